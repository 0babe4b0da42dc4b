package caltime

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout        = "20060102"
	dateLayoutDashed  = "2006-01-02"
	dateTimeLayout    = "20060102T150405"
	dateTimeLayoutUTC = "20060102T150405Z"

	ValueDate     = "DATE"
	ValueDateTime = "DATE-TIME"
	ValuePeriod   = "PERIOD"
)

// Date is a calendar date. The timezone only records the TZID it was
// declared with; dates themselves carry no time of day.
type Date struct {
	civil time.Time // midnight UTC
	tz    Timezone
}

func NewDate(year int, month time.Month, day int, tz Timezone) Date {
	return Date{civil: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), tz: tz}
}

// ParseDate accepts YYYYMMDD and YYYY-MM-DD.
func ParseDate(s string, tz Timezone) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, dateLayoutDashed} {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return Date{civil: t, tz: tz}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Format() string { return d.civil.Format(dateLayout) }

func (d Date) Timezone() Timezone { return d.tz }

func (d Date) Civil() (int, time.Month, int) { return d.civil.Date() }

// Time is midnight of the date in its zone (wall clock in UTC when floating).
func (d Date) Time() time.Time {
	y, m, dd := d.civil.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, d.tz.wall())
}

// DateTime is an instant bound to a timezone. Floating values keep their wall
// clock in time.UTC and are never converted.
type DateTime struct {
	t  time.Time
	tz Timezone
}

// NewDateTime interprets the wall clock of t in tz.
func NewDateTime(t time.Time, tz Timezone) DateTime {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return DateTime{t: time.Date(y, m, d, hh, mm, ss, 0, tz.wall()), tz: tz}
}

// At converts the instant t into tz, keeping the instant.
func At(t time.Time, tz Timezone) DateTime {
	if tz.IsLocal() {
		return NewDateTime(t, tz)
	}
	return DateTime{t: t.In(tz.loc).Truncate(time.Second), tz: tz}
}

// ParseDateTime parses YYYYMMDDTHHMMSS with an optional trailing Z. A Z forces
// UTC regardless of tz. Wall clocks skipped by a DST transition are rejected.
func ParseDateTime(s string, tz Timezone) (DateTime, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") {
		t, err := time.Parse(dateTimeLayoutUTC, s)
		if err != nil {
			return DateTime{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return DateTime{t: t, tz: UTC()}, nil
	}

	wall, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return DateTime{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	dt := NewDateTime(wall, tz)
	if dt.t.Hour() != wall.Hour() || dt.t.Minute() != wall.Minute() || dt.t.Day() != wall.Day() {
		return DateTime{}, fmt.Errorf("%w: %s in %s", ErrLocalTimeGap, s, tz)
	}
	return dt, nil
}

func (dt DateTime) Format() string {
	if dt.tz.IsUTC() {
		return dt.t.UTC().Format(dateTimeLayoutUTC)
	}
	return dt.t.Format(dateTimeLayout)
}

func (dt DateTime) Timezone() Timezone { return dt.tz }

// Time returns the instant. Floating values come back as their wall clock
// in UTC.
func (dt DateTime) Time() time.Time { return dt.t }

func (dt DateTime) IsZero() bool { return dt.t.IsZero() }

func (dt DateTime) Compare(o DateTime) int { return dt.t.Compare(o.t) }

func (dt DateTime) Sub(o DateTime) time.Duration { return dt.t.Sub(o.t) }

func (dt DateTime) Add(d time.Duration) DateTime {
	return DateTime{t: dt.t.Add(d), tz: dt.tz}
}

// UTCOrLocal converts zoned values to UTC and leaves floating values alone.
func (dt DateTime) UTCOrLocal() DateTime {
	if dt.tz.IsLocal() {
		return dt
	}
	return DateTime{t: dt.t.UTC(), tz: UTC()}
}

// DateOrDateTime holds either a Date or a DateTime.
type DateOrDateTime struct {
	date   Date
	dt     DateTime
	isDate bool
}

func FromDate(d Date) DateOrDateTime { return DateOrDateTime{date: d, isDate: true} }

func FromDateTime(dt DateTime) DateOrDateTime { return DateOrDateTime{dt: dt} }

// ParseDateOrDateTime parses value as valueType (DATE or DATE-TIME). An empty
// valueType guesses from the text.
func ParseDateOrDateTime(value, valueType string, tz Timezone) (DateOrDateTime, error) {
	switch strings.ToUpper(valueType) {
	case ValueDate:
		d, err := ParseDate(value, tz)
		if err != nil {
			return DateOrDateTime{}, err
		}
		return FromDate(d), nil
	case ValueDateTime:
		dt, err := ParseDateTime(value, tz)
		if err != nil {
			return DateOrDateTime{}, err
		}
		return FromDateTime(dt), nil
	case "":
		if strings.Contains(value, "T") {
			return ParseDateOrDateTime(value, ValueDateTime, tz)
		}
		return ParseDateOrDateTime(value, ValueDate, tz)
	}
	return DateOrDateTime{}, fmt.Errorf("%w: %s", ErrInvalidValueType, valueType)
}

func (v DateOrDateTime) IsDate() bool { return v.isDate }

func (v DateOrDateTime) Date() (Date, bool) { return v.date, v.isDate }

func (v DateOrDateTime) DateTime() (DateTime, bool) { return v.dt, !v.isDate }

func (v DateOrDateTime) Timezone() Timezone {
	if v.isDate {
		return v.date.tz
	}
	return v.dt.tz
}

// IsFloating reports whether the value has no fixed offset.
func (v DateOrDateTime) IsFloating() bool { return v.Timezone().IsLocal() }

func (v DateOrDateTime) ValueType() string {
	if v.isDate {
		return ValueDate
	}
	return ValueDateTime
}

func (v DateOrDateTime) Time() time.Time {
	if v.isDate {
		return v.date.Time()
	}
	return v.dt.t
}

func (v DateOrDateTime) Format() string {
	if v.isDate {
		return v.date.Format()
	}
	return v.dt.Format()
}

func (v DateOrDateTime) Compare(o DateOrDateTime) int { return v.Time().Compare(o.Time()) }

// Sub returns v-o. Two dates differ by whole civil days.
func (v DateOrDateTime) Sub(o DateOrDateTime) time.Duration {
	if v.isDate && o.isDate {
		return v.date.civil.Sub(o.date.civil)
	}
	return v.Time().Sub(o.Time())
}

// Add shifts the value by d. A date stays a date, floored to the day reached.
func (v DateOrDateTime) Add(d time.Duration) DateOrDateTime {
	if !v.isDate {
		return FromDateTime(v.dt.Add(d))
	}
	t := v.date.civil.Add(d)
	return FromDate(NewDate(t.Year(), t.Month(), t.Day(), v.date.tz))
}

// AddDuration applies an iCalendar duration with nominal days.
func (v DateOrDateTime) AddDuration(d Duration) DateOrDateTime {
	if !v.isDate {
		return FromDateTime(DateTime{t: d.AddTo(v.dt.t), tz: v.dt.tz})
	}
	t := d.AddTo(v.date.civil)
	return FromDate(NewDate(t.Year(), t.Month(), t.Day(), v.date.tz))
}

// UTCOrLocal normalizes zoned date-times to UTC; dates lose their TZID.
func (v DateOrDateTime) UTCOrLocal() DateOrDateTime {
	if v.isDate {
		y, m, d := v.date.civil.Date()
		return FromDate(NewDate(y, m, d, Local()))
	}
	return FromDateTime(v.dt.UTCOrLocal())
}

// WithTime places the instant t into the kind and zone of v: dates take the
// calendar day of t in v's zone, date-times take the instant.
func (v DateOrDateTime) WithTime(t time.Time) DateOrDateTime {
	tz := v.Timezone()
	if v.isDate {
		lt := t
		if !tz.IsLocal() {
			lt = t.In(tz.loc)
		}
		return FromDate(NewDate(lt.Year(), lt.Month(), lt.Day(), tz))
	}
	if tz.IsLocal() {
		return FromDateTime(NewDateTime(t, tz))
	}
	return FromDateTime(At(t, tz))
}
