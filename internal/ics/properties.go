package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// properties is the flat, ordered property list of a verified component.
type properties []contentline.ContentLine

// Properties returns a copy of every property in document order.
func (p properties) Properties() []contentline.ContentLine {
	return cloneLines(p)
}

// Property returns the first property with the given name.
func (p properties) Property(name string) (contentline.ContentLine, bool) {
	name = strings.ToUpper(name)
	for _, cl := range p {
		if cl.Name == name {
			return cl.Clone(), true
		}
	}
	return contentline.ContentLine{}, false
}

// Text returns the unescaped value of the first property with that name.
func (p properties) Text(name string) string {
	cl, ok := p.Property(name)
	if !ok {
		return ""
	}
	return contentline.UnescapeText(cl.Value)
}

func cloneLines(in []contentline.ContentLine) []contentline.ContentLine {
	if in == nil {
		return nil
	}
	out := make([]contentline.ContentLine, len(in))
	for i, cl := range in {
		out[i] = cl.Clone()
	}
	return out
}

func namedLines(props []contentline.ContentLine, name string) []contentline.ContentLine {
	var out []contentline.ContentLine
	for _, cl := range props {
		if cl.Name == name {
			out = append(out, cl)
		}
	}
	return out
}

func hasProperty(props []contentline.ContentLine, name string) bool {
	for _, cl := range props {
		if cl.Name == name {
			return true
		}
	}
	return false
}

// propDef describes how one named property is decoded into its typed form.
type propDef[T any] struct {
	name        string
	defaultType string
	parse       func(cl contentline.ContentLine, defaultType string, scope Scope) (T, error)
}

func (d propDef[T]) decode(cl contentline.ContentLine, scope Scope) (T, error) {
	v, err := d.parse(cl, d.defaultType, scope)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", d.name, err)
	}
	return v, nil
}

// required returns the single instance of the property.
func (d propDef[T]) required(props []contentline.ContentLine, scope Scope) (T, error) {
	var zero T
	lines := namedLines(props, d.name)
	switch {
	case len(lines) == 0 || !lines[0].HasValue():
		return zero, missingProperty(d.name)
	case len(lines) > 1:
		return zero, conflict("multiple instances of " + d.name)
	}
	return d.decode(lines[0], scope)
}

// optional returns the property if present, failing on duplicates.
func (d propDef[T]) optional(props []contentline.ContentLine, scope Scope) (T, bool, error) {
	var zero T
	lines := namedLines(props, d.name)
	switch len(lines) {
	case 0:
		return zero, false, nil
	case 1:
		v, err := d.decode(lines[0], scope)
		return v, err == nil, err
	default:
		return zero, false, conflict("multiple instances of " + d.name)
	}
}

// all decodes every instance in document order.
func (d propDef[T]) all(props []contentline.ContentLine, scope Scope) ([]T, error) {
	var out []T
	for _, cl := range namedLines(props, d.name) {
		v, err := d.decode(cl, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func flatten[T any](in [][]T) []T {
	var out []T
	for _, vs := range in {
		out = append(out, vs...)
	}
	return out
}

var (
	propUID      = propDef[string]{name: "UID", defaultType: "TEXT", parse: textValue}
	propVersion  = propDef[string]{name: "VERSION", defaultType: "TEXT", parse: textValue}
	propProdID   = propDef[string]{name: "PRODID", defaultType: "TEXT", parse: textValue}
	propCalscale = propDef[string]{name: "CALSCALE", defaultType: "TEXT", parse: textValue}
	propMethod   = propDef[string]{name: "METHOD", defaultType: "TEXT", parse: textValue}
	propTZID     = propDef[string]{name: "TZID", defaultType: "TEXT", parse: textValue}
	propLocation = propDef[string]{name: "X-LIC-LOCATION", defaultType: "TEXT", parse: textValue}
	propAction   = propDef[string]{name: "ACTION", defaultType: "TEXT", parse: textValue}

	propDTStart      = propDef[caltime.DateOrDateTime]{name: "DTSTART", defaultType: caltime.ValueDateTime, parse: dateOrDateTimeValue}
	propDTEnd        = propDef[caltime.DateOrDateTime]{name: "DTEND", defaultType: caltime.ValueDateTime, parse: dateOrDateTimeValue}
	propDue          = propDef[caltime.DateOrDateTime]{name: "DUE", defaultType: caltime.ValueDateTime, parse: dateOrDateTimeValue}
	propDTStamp      = propDef[caltime.DateOrDateTime]{name: "DTSTAMP", defaultType: caltime.ValueDateTime, parse: dateOrDateTimeValue}
	propRecurrenceID = propDef[RecurrenceID]{name: "RECURRENCE-ID", defaultType: caltime.ValueDateTime, parse: recurrenceIDValue}
	propExDate       = propDef[[]caltime.DateOrDateTime]{name: "EXDATE", defaultType: caltime.ValueDateTime, parse: dateOrDateTimeList}
	propRDate        = propDef[[]caltime.DateOrPeriod]{name: "RDATE", defaultType: caltime.ValueDateTime, parse: dateOrPeriodList}

	propDuration = propDef[caltime.Duration]{name: "DURATION", defaultType: "DURATION", parse: durationValue}
	propRRule    = propDef[string]{name: "RRULE", defaultType: "RECUR", parse: textValue}
	propExRule   = propDef[string]{name: "EXRULE", defaultType: "RECUR", parse: textValue}
	propRepeat   = propDef[int]{name: "REPEAT", defaultType: "INTEGER", parse: integerValue}
	propTrigger  = propDef[Trigger]{name: "TRIGGER", defaultType: "DURATION", parse: triggerValue}

	propOffsetFrom = propDef[int]{name: "TZOFFSETFROM", defaultType: "UTC-OFFSET", parse: offsetValue}
	propOffsetTo   = propDef[int]{name: "TZOFFSETTO", defaultType: "UTC-OFFSET", parse: offsetValue}
	propFreeBusy   = propDef[[]caltime.Period]{name: "FREEBUSY", defaultType: caltime.ValuePeriod, parse: periodList}
)

func valueTypeOf(cl contentline.ContentLine, def string) string {
	if v, ok := cl.Params.Get("VALUE"); ok {
		return strings.ToUpper(v)
	}
	return def
}

func timezoneOf(cl contentline.ContentLine, scope Scope) (caltime.Timezone, error) {
	tzid, ok := cl.Params.Get("TZID")
	if !ok {
		return caltime.Local(), nil
	}
	return scope.Timezones.Lookup(tzid)
}

func textValue(cl contentline.ContentLine, _ string, _ Scope) (string, error) {
	return cl.Value, nil
}

func integerValue(cl contentline.ContentLine, _ string, _ Scope) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(cl.Value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPropertyValue, cl.Value)
	}
	return n, nil
}

func dateOrDateTimeValue(cl contentline.ContentLine, def string, scope Scope) (caltime.DateOrDateTime, error) {
	vt := valueTypeOf(cl, def)
	if vt != caltime.ValueDate && vt != caltime.ValueDateTime {
		return caltime.DateOrDateTime{}, fmt.Errorf("%w: %s", ErrInvalidPropertyType, vt)
	}
	tz, err := timezoneOf(cl, scope)
	if err != nil {
		return caltime.DateOrDateTime{}, err
	}
	return caltime.ParseDateOrDateTime(cl.Value, vt, tz)
}

func dateOrDateTimeList(cl contentline.ContentLine, def string, scope Scope) ([]caltime.DateOrDateTime, error) {
	var out []caltime.DateOrDateTime
	for _, part := range strings.Split(cl.Value, ",") {
		v, err := dateOrDateTimeValue(contentline.ContentLine{Name: cl.Name, Params: cl.Params, Value: part}, def, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func dateOrPeriodList(cl contentline.ContentLine, def string, scope Scope) ([]caltime.DateOrPeriod, error) {
	vt := valueTypeOf(cl, def)
	if vt != caltime.ValueDate && vt != caltime.ValueDateTime && vt != caltime.ValuePeriod {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPropertyType, vt)
	}
	tz, err := timezoneOf(cl, scope)
	if err != nil {
		return nil, err
	}
	var out []caltime.DateOrPeriod
	for _, part := range strings.Split(cl.Value, ",") {
		v, err := caltime.ParseDateOrPeriod(part, vt, tz)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func periodList(cl contentline.ContentLine, def string, scope Scope) ([]caltime.Period, error) {
	if vt := valueTypeOf(cl, def); vt != caltime.ValuePeriod {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPropertyType, vt)
	}
	var out []caltime.Period
	for _, part := range strings.Split(cl.Value, ",") {
		p, err := caltime.ParsePeriod(part, caltime.Local())
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func durationValue(cl contentline.ContentLine, def string, _ Scope) (caltime.Duration, error) {
	if vt := valueTypeOf(cl, def); vt != "DURATION" {
		return caltime.Duration{}, fmt.Errorf("%w: %s", ErrInvalidPropertyType, vt)
	}
	return caltime.ParseDuration(cl.Value)
}

func offsetValue(cl contentline.ContentLine, _ string, _ Scope) (int, error) {
	return caltime.ParseUTCOffset(strings.TrimSpace(cl.Value))
}

// Range tells whether an override replaces one instance or also every
// later one.
type Range int

const (
	RangeThis Range = iota
	RangeThisAndFuture
)

func (r Range) String() string {
	if r == RangeThisAndFuture {
		return "THISANDFUTURE"
	}
	return "THIS"
}

// RecurrenceID identifies the original instance an override replaces.
type RecurrenceID struct {
	Value caltime.DateOrDateTime
	Range Range
}

func recurrenceIDValue(cl contentline.ContentLine, def string, scope Scope) (RecurrenceID, error) {
	v, err := dateOrDateTimeValue(cl, def, scope)
	if err != nil {
		return RecurrenceID{}, err
	}
	rid := RecurrenceID{Value: v}
	if r, ok := cl.Params.Get("RANGE"); ok {
		if !strings.EqualFold(r, "THISANDFUTURE") {
			return RecurrenceID{}, fmt.Errorf("%w: RANGE=%s", ErrInvalidPropertyValue, r)
		}
		rid.Range = RangeThisAndFuture
	}
	return rid, nil
}

// Trigger is an alarm trigger: a duration relative to the start or end of
// the parent component, or an absolute UTC date-time.
type Trigger struct {
	Offset     caltime.Duration
	RelatedEnd bool
	At         caltime.DateTime
	Absolute   bool
}

func triggerValue(cl contentline.ContentLine, def string, scope Scope) (Trigger, error) {
	switch vt := valueTypeOf(cl, def); vt {
	case "DURATION":
		d, err := caltime.ParseDuration(cl.Value)
		if err != nil {
			return Trigger{}, err
		}
		related, _ := cl.Params.Get("RELATED")
		return Trigger{Offset: d, RelatedEnd: strings.EqualFold(related, "END")}, nil
	case caltime.ValueDateTime:
		tz, err := timezoneOf(cl, scope)
		if err != nil {
			return Trigger{}, err
		}
		at, err := caltime.ParseDateTime(cl.Value, tz)
		if err != nil {
			return Trigger{}, err
		}
		return Trigger{At: at, Absolute: true}, nil
	default:
		return Trigger{}, fmt.Errorf("%w: %s", ErrInvalidPropertyType, vt)
	}
}

// Resolve returns the moment the trigger fires for a parent starting at
// start and ending at end.
func (t Trigger) Resolve(start, end time.Time) time.Time {
	if t.Absolute {
		return t.At.Time()
	}
	if t.RelatedEnd {
		return t.Offset.AddTo(end)
	}
	return t.Offset.AddTo(start)
}
