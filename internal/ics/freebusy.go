package ics

import (
	"fmt"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// FreeBusyDraft is an editable VFREEBUSY.
type FreeBusyDraft struct {
	Properties []contentline.ContentLine
}

func (d *FreeBusyDraft) Kind() string { return KindFreeBusy }

func (d *FreeBusyDraft) AddProperty(cl contentline.ContentLine) {
	d.Properties = append(d.Properties, cl)
}

func (d *FreeBusyDraft) AddChild(c ComponentDraft) error {
	return invalidComponent(c.Kind() + " inside " + KindFreeBusy)
}

func (d *FreeBusyDraft) Build(scope Scope) (*FreeBusy, error) {
	fb, err := d.build(scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindFreeBusy, err)
	}
	return fb, nil
}

func (d *FreeBusyDraft) build(scope Scope) (*FreeBusy, error) {
	if err := freeBusyRules.check(d.Properties); err != nil {
		return nil, err
	}
	fb := &FreeBusy{properties: cloneLines(d.Properties)}
	var err error
	if fb.uid, err = propUID.required(d.Properties, scope); err != nil {
		return nil, err
	}
	if _, err = propDTStamp.required(d.Properties, scope); err != nil {
		return nil, err
	}
	if fb.start, fb.hasStart, err = propDTStart.optional(d.Properties, scope); err != nil {
		return nil, err
	}
	if fb.end, fb.hasEnd, err = propDTEnd.optional(d.Properties, scope); err != nil {
		return nil, err
	}
	periods, err := propFreeBusy.all(d.Properties, scope)
	if err != nil {
		return nil, err
	}
	fb.busy = flatten(periods)
	return fb, nil
}

// FreeBusy is a verified VFREEBUSY.
type FreeBusy struct {
	properties
	uid      string
	start    caltime.DateOrDateTime
	hasStart bool
	end      caltime.DateOrDateTime
	hasEnd   bool
	busy     []caltime.Period
}

func (f *FreeBusy) Kind() string { return KindFreeBusy }

func (f *FreeBusy) UID() string { return f.uid }

func (f *FreeBusy) Start() (caltime.DateOrDateTime, bool) { return f.start, f.hasStart }

func (f *FreeBusy) End() (caltime.DateOrDateTime, bool) { return f.end, f.hasEnd }

// Busy returns every FREEBUSY period in document order.
func (f *FreeBusy) Busy() []caltime.Period { return append([]caltime.Period(nil), f.busy...) }

func (f *FreeBusy) Generate() string { return render(KindFreeBusy, f.properties, nil) }

func (f *FreeBusy) ToDraft() *FreeBusyDraft {
	return &FreeBusyDraft{Properties: cloneLines(f.properties)}
}
