package ics

import (
	"errors"
	"fmt"

	"icalkit/internal/caltime"
)

var (
	ErrEmptyInput           = errors.New("empty input")
	ErrTooManyComponents    = errors.New("too many components, expected exactly one")
	ErrInvalidComponent     = errors.New("invalid component")
	ErrIncompleteObject     = errors.New("incomplete object, input ended before END")
	ErrMissingHeader        = errors.New("missing header")
	ErrMissingProperty      = errors.New("missing required property")
	ErrMissingUID           = errors.New("missing UID")
	ErrPropertyConflict     = errors.New("property conflict")
	ErrInvalidRule          = errors.New("invalid recurrence rule")
	ErrInvalidPropertyValue = errors.New("invalid property value")
	ErrInvalidCalscale      = errors.New("invalid CALSCALE")
	ErrInvalidVersion       = errors.New("invalid VERSION")
	ErrMultipleMainObjects  = errors.New("more than one main instance")
	ErrDifferingUIDs        = errors.New("differing UIDs inside one object")
	ErrMissingRecurrenceID  = errors.New("override is missing RECURRENCE-ID")
	ErrRecurIDMismatch      = errors.New("RECURRENCE-ID does not match DTSTART value type")

	ErrInvalidDuration     = caltime.ErrInvalidDuration
	ErrInvalidDate         = caltime.ErrInvalidDate
	ErrInvalidPropertyType = caltime.ErrInvalidValueType
	ErrInvalidTZID         = caltime.ErrUndeclaredTZID
)

func missingProperty(name string) error {
	if name == "UID" {
		return fmt.Errorf("%w: %w UID", ErrMissingUID, ErrMissingProperty)
	}
	return fmt.Errorf("%w %s", ErrMissingProperty, name)
}

func conflict(what string) error {
	return fmt.Errorf("%w: %s", ErrPropertyConflict, what)
}

func invalidComponent(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidComponent, name)
}
