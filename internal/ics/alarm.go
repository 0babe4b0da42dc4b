package ics

import (
	"fmt"
	"strings"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// AlarmDraft is an editable VALARM.
type AlarmDraft struct {
	Properties []contentline.ContentLine
}

func (d *AlarmDraft) Kind() string { return KindAlarm }

func (d *AlarmDraft) AddProperty(cl contentline.ContentLine) {
	d.Properties = append(d.Properties, cl)
}

func (d *AlarmDraft) AddChild(c ComponentDraft) error {
	return invalidComponent(c.Kind() + " inside " + KindAlarm)
}

func (d *AlarmDraft) Build(scope Scope) (*Alarm, error) {
	a, err := d.build(scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindAlarm, err)
	}
	return a, nil
}

func (d *AlarmDraft) build(scope Scope) (*Alarm, error) {
	if err := alarmRules.check(d.Properties); err != nil {
		return nil, err
	}
	a := &Alarm{properties: cloneLines(d.Properties)}
	var err error
	if a.action, err = propAction.required(d.Properties, scope); err != nil {
		return nil, err
	}
	a.action = strings.ToUpper(a.action)
	if a.trigger, err = propTrigger.required(d.Properties, scope); err != nil {
		return nil, err
	}
	if a.repeat, _, err = propRepeat.optional(d.Properties, scope); err != nil {
		return nil, err
	}
	if a.repeat < 0 {
		return nil, fmt.Errorf("%w: REPEAT %d", ErrInvalidPropertyValue, a.repeat)
	}
	if a.interval, _, err = propDuration.optional(d.Properties, scope); err != nil {
		return nil, err
	}
	return a, nil
}

// Alarm is a verified VALARM.
type Alarm struct {
	properties
	action   string
	trigger  Trigger
	repeat   int
	interval caltime.Duration
}

func (a *Alarm) Kind() string { return KindAlarm }

// Action is the uppercased ACTION, e.g. DISPLAY or AUDIO.
func (a *Alarm) Action() string { return a.action }

func (a *Alarm) Trigger() Trigger { return a.trigger }

// Repeat returns the number of extra repetitions and the gap between them.
func (a *Alarm) Repeat() (int, caltime.Duration) { return a.repeat, a.interval }

func (a *Alarm) Generate() string { return render(KindAlarm, a.properties, nil) }

func (a *Alarm) ToDraft() *AlarmDraft {
	return &AlarmDraft{Properties: cloneLines(a.properties)}
}
