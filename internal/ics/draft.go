package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

const (
	KindCalendar = "VCALENDAR"
	KindEvent    = "VEVENT"
	KindTodo     = "VTODO"
	KindJournal  = "VJOURNAL"
	KindFreeBusy = "VFREEBUSY"
	KindAlarm    = "VALARM"
	KindTimezone = "VTIMEZONE"
	KindStandard = "STANDARD"
	KindDaylight = "DAYLIGHT"
)

// ComponentDraft is a component still being assembled, either by the parser
// or by hand. Drafts are plain data; Build validates them.
type ComponentDraft interface {
	Kind() string
	AddProperty(contentline.ContentLine)
	AddChild(ComponentDraft) error
}

// Component is a verified, immutable component.
type Component interface {
	Kind() string
	Properties() []contentline.ContentLine
	Generate() string
}

// Scope carries what a component needs from its enclosing calendar while
// it is verified.
type Scope struct {
	Timezones caltime.Table
	// HasMethod reports a calendar-level METHOD, which relaxes DTSTART on events.
	HasMethod bool
}

// NewDraft returns an empty draft for the named component kind.
func NewDraft(kind string) (ComponentDraft, error) {
	switch k := strings.ToUpper(kind); k {
	case KindCalendar:
		return &CalendarDraft{}, nil
	case KindEvent:
		return &EventDraft{}, nil
	case KindTodo:
		return &TodoDraft{}, nil
	case KindJournal:
		return &JournalDraft{}, nil
	case KindFreeBusy:
		return &FreeBusyDraft{}, nil
	case KindAlarm:
		return &AlarmDraft{}, nil
	case KindTimezone:
		return &TimezoneDraft{}, nil
	case KindStandard, KindDaylight:
		return &TransitionDraft{Daylight: k == KindDaylight}, nil
	default:
		return nil, invalidComponent(kind)
	}
}

type lineSource interface {
	Next() (contentline.ContentLine, error)
}

// parseComponent fills d from src until the matching END line.
func parseComponent(d ComponentDraft, src lineSource) error {
	for {
		cl, err := src.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s", ErrIncompleteObject, d.Kind())
		}
		if err != nil {
			return err
		}

		switch cl.Name {
		case "END":
			if !strings.EqualFold(strings.TrimSpace(cl.Value), d.Kind()) {
				return fmt.Errorf("%w: END:%s inside %s", ErrInvalidComponent, cl.Value, d.Kind())
			}
			return nil
		case "BEGIN":
			child, err := NewDraft(strings.TrimSpace(cl.Value))
			if err != nil {
				return err
			}
			if err := parseComponent(child, src); err != nil {
				return err
			}
			if err := d.AddChild(child); err != nil {
				return err
			}
		default:
			d.AddProperty(cl)
		}
	}
}
