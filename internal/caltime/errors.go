package caltime

import "errors"

var (
	ErrInvalidDate      = errors.New("invalid date or date-time")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidOffset    = errors.New("invalid utc offset")
	ErrInvalidValueType = errors.New("invalid value type")
	ErrUndeclaredTZID   = errors.New("TZID not declared by any VTIMEZONE")
	ErrLocalTimeGap     = errors.New("local time does not exist in timezone")
)
