package ics

import (
	"fmt"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// TodoDraft is an editable VTODO.
type TodoDraft struct {
	Properties []contentline.ContentLine
	Alarms     []*AlarmDraft
}

func (d *TodoDraft) Kind() string { return KindTodo }

func (d *TodoDraft) AddProperty(cl contentline.ContentLine) {
	d.Properties = append(d.Properties, cl)
}

func (d *TodoDraft) AddChild(c ComponentDraft) error {
	a, ok := c.(*AlarmDraft)
	if !ok {
		return invalidComponent(c.Kind() + " inside " + KindTodo)
	}
	d.Alarms = append(d.Alarms, a)
	return nil
}

func (d *TodoDraft) Build(scope Scope) (*Todo, error) {
	t, err := d.build(scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindTodo, err)
	}
	return t, nil
}

func (d *TodoDraft) build(scope Scope) (*Todo, error) {
	if err := todoRules.check(d.Properties); err != nil {
		return nil, err
	}
	e, err := buildEntry(d.Properties, scope)
	if err != nil {
		return nil, err
	}
	t := &Todo{entry: e, properties: cloneLines(d.Properties)}

	if t.stamp, err = propDTStamp.required(d.Properties, scope); err != nil {
		return nil, err
	}
	if t.due, t.hasDue, err = propDue.optional(d.Properties, scope); err != nil {
		return nil, err
	}
	if t.duration, t.hasDuration, err = propDuration.optional(d.Properties, scope); err != nil {
		return nil, err
	}
	if t.hasDuration && !t.hasStart {
		return nil, fmt.Errorf("%w (DURATION needs an anchor)", missingProperty("DTSTART"))
	}
	for _, ad := range d.Alarms {
		a, err := ad.Build(scope)
		if err != nil {
			return nil, err
		}
		t.alarms = append(t.alarms, a)
	}
	return t, nil
}

// Todo is a verified VTODO.
type Todo struct {
	entry
	properties
	alarms []*Alarm

	stamp       caltime.DateOrDateTime
	due         caltime.DateOrDateTime
	hasDue      bool
	duration    caltime.Duration
	hasDuration bool
}

func (t *Todo) Kind() string { return KindTodo }

func (t *Todo) Alarms() []*Alarm { return append([]*Alarm(nil), t.alarms...) }

func (t *Todo) Stamp() caltime.DateOrDateTime { return t.stamp }

// Due returns DUE, or DTSTART plus DURATION.
func (t *Todo) Due() (caltime.DateOrDateTime, bool) {
	switch {
	case t.hasDue:
		return t.due, true
	case t.hasDuration && t.hasStart:
		return t.start.AddDuration(t.duration), true
	}
	return caltime.DateOrDateTime{}, false
}

func (t *Todo) Duration() (caltime.Duration, bool) { return t.duration, t.hasDuration }

func (t *Todo) Generate() string {
	return render(KindTodo, t.properties, asComponents(t.alarms))
}

func (t *Todo) ToDraft() *TodoDraft {
	d := &TodoDraft{Properties: cloneLines(t.properties)}
	for _, a := range t.alarms {
		d.Alarms = append(d.Alarms, a.ToDraft())
	}
	return d
}

func (t *Todo) rebuild(props []contentline.ContentLine, scope Scope) (*Todo, error) {
	d := t.ToDraft()
	d.Properties = props
	return d.Build(scope)
}
