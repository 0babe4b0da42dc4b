package ics

import (
	"fmt"
	"time"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// TimezoneDraft is an editable VTIMEZONE.
type TimezoneDraft struct {
	Properties  []contentline.ContentLine
	Transitions []*TransitionDraft
}

func (d *TimezoneDraft) Kind() string { return KindTimezone }

func (d *TimezoneDraft) AddProperty(cl contentline.ContentLine) {
	d.Properties = append(d.Properties, cl)
}

func (d *TimezoneDraft) AddChild(c ComponentDraft) error {
	t, ok := c.(*TransitionDraft)
	if !ok {
		return invalidComponent(c.Kind() + " inside " + KindTimezone)
	}
	d.Transitions = append(d.Transitions, t)
	return nil
}

// Build verifies the draft and resolves it to an IANA location when one
// matches its TZID or X-LIC-LOCATION.
func (d *TimezoneDraft) Build() (*VTimezone, error) {
	tz, err := d.build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindTimezone, err)
	}
	return tz, nil
}

func (d *TimezoneDraft) build() (*VTimezone, error) {
	if err := timezoneRules.check(d.Properties); err != nil {
		return nil, err
	}
	tz := &VTimezone{properties: cloneLines(d.Properties)}
	var err error
	if tz.tzid, err = propTZID.required(d.Properties, Scope{}); err != nil {
		return nil, err
	}
	if tz.hint, _, err = propLocation.optional(d.Properties, Scope{}); err != nil {
		return nil, err
	}
	for _, td := range d.Transitions {
		t, err := td.Build()
		if err != nil {
			return nil, err
		}
		tz.transitions = append(tz.transitions, t)
	}
	tz.loc = caltime.Resolve(tz.hint, tz.tzid)
	return tz, nil
}

// VTimezone is a verified VTIMEZONE.
type VTimezone struct {
	properties
	tzid        string
	hint        string
	loc         *time.Location
	transitions []*Transition
}

func (v *VTimezone) Kind() string { return KindTimezone }

func (v *VTimezone) TZID() string { return v.tzid }

// LocationHint returns X-LIC-LOCATION, if present.
func (v *VTimezone) LocationHint() string { return v.hint }

// Location is the resolved IANA zone, or nil when none could be found.
// Values referencing an unresolved zone are treated as floating.
func (v *VTimezone) Location() *time.Location { return v.loc }

func (v *VTimezone) Transitions() []*Transition {
	return append([]*Transition(nil), v.transitions...)
}

func (v *VTimezone) Generate() string {
	return render(KindTimezone, v.properties, asComponents(v.transitions))
}

func (v *VTimezone) ToDraft() *TimezoneDraft {
	d := &TimezoneDraft{Properties: cloneLines(v.properties)}
	for _, t := range v.transitions {
		d.Transitions = append(d.Transitions, t.ToDraft())
	}
	return d
}

// TransitionDraft is an editable STANDARD or DAYLIGHT sub-component.
type TransitionDraft struct {
	Daylight   bool
	Properties []contentline.ContentLine
}

func (d *TransitionDraft) Kind() string {
	if d.Daylight {
		return KindDaylight
	}
	return KindStandard
}

func (d *TransitionDraft) AddProperty(cl contentline.ContentLine) {
	d.Properties = append(d.Properties, cl)
}

func (d *TransitionDraft) AddChild(c ComponentDraft) error {
	return invalidComponent(c.Kind() + " inside " + d.Kind())
}

func (d *TransitionDraft) Build() (*Transition, error) {
	t, err := d.build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Kind(), err)
	}
	return t, nil
}

func (d *TransitionDraft) build() (*Transition, error) {
	if err := transitionRules.check(d.Properties); err != nil {
		return nil, err
	}
	t := &Transition{daylight: d.Daylight, properties: cloneLines(d.Properties)}
	var err error
	if t.start, err = propDTStart.required(d.Properties, Scope{}); err != nil {
		return nil, err
	}
	if t.offsetFrom, err = propOffsetFrom.required(d.Properties, Scope{}); err != nil {
		return nil, err
	}
	if t.offsetTo, err = propOffsetTo.required(d.Properties, Scope{}); err != nil {
		return nil, err
	}
	return t, nil
}

// Transition is one STANDARD or DAYLIGHT observance.
type Transition struct {
	properties
	daylight   bool
	start      caltime.DateOrDateTime
	offsetFrom int
	offsetTo   int
}

func (t *Transition) Kind() string {
	if t.daylight {
		return KindDaylight
	}
	return KindStandard
}

func (t *Transition) Daylight() bool { return t.daylight }

// Start is the local onset of the observance.
func (t *Transition) Start() caltime.DateOrDateTime { return t.start }

// Offsets returns TZOFFSETFROM and TZOFFSETTO in seconds east of UTC.
func (t *Transition) Offsets() (from, to int) { return t.offsetFrom, t.offsetTo }

func (t *Transition) Generate() string { return render(t.Kind(), t.properties, nil) }

func (t *Transition) ToDraft() *TransitionDraft {
	return &TransitionDraft{Daylight: t.daylight, Properties: cloneLines(t.properties)}
}
