package ics

import (
	"fmt"
	"time"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// EventDraft is an editable VEVENT.
type EventDraft struct {
	Properties []contentline.ContentLine
	Alarms     []*AlarmDraft
}

func (d *EventDraft) Kind() string { return KindEvent }

func (d *EventDraft) AddProperty(cl contentline.ContentLine) {
	d.Properties = append(d.Properties, cl)
}

func (d *EventDraft) AddChild(c ComponentDraft) error {
	a, ok := c.(*AlarmDraft)
	if !ok {
		return invalidComponent(c.Kind() + " inside " + KindEvent)
	}
	d.Alarms = append(d.Alarms, a)
	return nil
}

// Build verifies the draft. DTSTART is required unless scope says the
// calendar carries a METHOD.
func (d *EventDraft) Build(scope Scope) (*Event, error) {
	ev, err := d.build(scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindEvent, err)
	}
	return ev, nil
}

func (d *EventDraft) build(scope Scope) (*Event, error) {
	rules := eventRules
	if !scope.HasMethod {
		rules = rules.with("DTSTART")
	}
	if err := rules.check(d.Properties); err != nil {
		return nil, err
	}

	e, err := buildEntry(d.Properties, scope)
	if err != nil {
		return nil, err
	}
	ev := &Event{entry: e, properties: cloneLines(d.Properties)}

	if ev.end, ev.hasEnd, err = propDTEnd.optional(d.Properties, scope); err != nil {
		return nil, err
	}
	if ev.duration, ev.hasDuration, err = propDuration.optional(d.Properties, scope); err != nil {
		return nil, err
	}
	if _, _, err = propDTStamp.optional(d.Properties, scope); err != nil {
		return nil, err
	}

	for _, ad := range d.Alarms {
		a, err := ad.Build(scope)
		if err != nil {
			return nil, err
		}
		ev.alarms = append(ev.alarms, a)
	}
	return ev, nil
}

// Event is a verified VEVENT.
type Event struct {
	entry
	properties
	alarms []*Alarm

	end         caltime.DateOrDateTime
	hasEnd      bool
	duration    caltime.Duration
	hasDuration bool
}

func (e *Event) Kind() string { return KindEvent }

func (e *Event) Alarms() []*Alarm { return append([]*Alarm(nil), e.alarms...) }

// DTEnd returns the explicit DTEND.
func (e *Event) DTEnd() (caltime.DateOrDateTime, bool) { return e.end, e.hasEnd }

func (e *Event) Duration() (caltime.Duration, bool) { return e.duration, e.hasDuration }

// End returns DTEND, or DTSTART plus DURATION. Without either, an all-day
// event lasts one day and a timed event ends when it starts.
func (e *Event) End() (caltime.DateOrDateTime, bool) {
	switch {
	case e.hasEnd:
		return e.end, true
	case !e.hasStart:
		return caltime.DateOrDateTime{}, false
	case e.hasDuration:
		return e.start.AddDuration(e.duration), true
	case e.start.IsDate():
		return e.start.Add(24 * time.Hour), true
	default:
		return e.start, true
	}
}

func (e *Event) Generate() string {
	return render(KindEvent, e.properties, asComponents(e.alarms))
}

// ToDraft returns an editable copy.
func (e *Event) ToDraft() *EventDraft {
	d := &EventDraft{Properties: cloneLines(e.properties)}
	for _, a := range e.alarms {
		d.Alarms = append(d.Alarms, a.ToDraft())
	}
	return d
}

func (e *Event) rebuild(props []contentline.ContentLine, scope Scope) (*Event, error) {
	d := e.ToDraft()
	d.Properties = props
	return d.Build(scope)
}
