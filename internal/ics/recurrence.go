package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// Recurrence is the recurrence bundle of one entry, anchored at its DTSTART.
type Recurrence struct {
	RRules  []rrule.ROption
	ExRules []rrule.ROption
	RDates  []caltime.DateOrPeriod
	ExDates []caltime.DateOrDateTime
}

func (r Recurrence) IsEmpty() bool {
	return len(r.RRules) == 0 && len(r.ExRules) == 0 && len(r.RDates) == 0 && len(r.ExDates) == 0
}

// entry holds the fields shared by events, to-dos and journal entries.
type entry struct {
	uid        string
	start      caltime.DateOrDateTime
	hasStart   bool
	recurID    RecurrenceID
	hasRecurID bool
	recurrence Recurrence
}

func (e entry) UID() string { return e.uid }

// Start returns DTSTART. Only events without a calendar METHOD are
// guaranteed to have one.
func (e entry) Start() (caltime.DateOrDateTime, bool) { return e.start, e.hasStart }

func (e entry) RecurrenceID() (RecurrenceID, bool) { return e.recurID, e.hasRecurID }

func (e entry) Recurrence() Recurrence { return e.recurrence }

func (e entry) HasRecurrence() bool { return !e.recurrence.IsEmpty() }

func buildEntry(props []contentline.ContentLine, scope Scope) (entry, error) {
	var e entry
	var err error

	if e.uid, err = propUID.required(props, scope); err != nil {
		return e, err
	}
	if e.start, e.hasStart, err = propDTStart.optional(props, scope); err != nil {
		return e, err
	}
	if e.recurID, e.hasRecurID, err = propRecurrenceID.optional(props, scope); err != nil {
		return e, err
	}
	if e.hasRecurID && e.hasStart {
		if e.recurID.Value.IsDate() != e.start.IsDate() || e.recurID.Value.IsFloating() != e.start.IsFloating() {
			return e, fmt.Errorf("%w: RECURRENCE-ID %s, DTSTART %s", ErrRecurIDMismatch, e.recurID.Value.Format(), e.start.Format())
		}
	}

	rdates, err := propRDate.all(props, scope)
	if err != nil {
		return e, err
	}
	exdates, err := propExDate.all(props, scope)
	if err != nil {
		return e, err
	}
	rrules, err := propRRule.all(props, scope)
	if err != nil {
		return e, err
	}
	exrules, err := propExRule.all(props, scope)
	if err != nil {
		return e, err
	}
	e.recurrence.RDates = flatten(rdates)
	e.recurrence.ExDates = flatten(exdates)

	if len(rrules)+len(exrules)+len(e.recurrence.RDates)+len(e.recurrence.ExDates) > 0 && !e.hasStart {
		return e, fmt.Errorf("%w (recurrence needs an anchor)", missingProperty("DTSTART"))
	}
	for _, s := range rrules {
		opt, err := parseRule(s, e.start)
		if err != nil {
			return e, err
		}
		e.recurrence.RRules = append(e.recurrence.RRules, opt)
	}
	for _, s := range exrules {
		opt, err := parseRule(s, e.start)
		if err != nil {
			return e, err
		}
		e.recurrence.ExRules = append(e.recurrence.ExRules, opt)
	}
	return e, nil
}

// ruleLocation is the zone rule instants are generated in. Floating values
// use UTC as a stand-in for their wall clock.
func ruleLocation(v caltime.DateOrDateTime) *time.Location {
	if loc := v.Timezone().Location(); loc != nil {
		return loc
	}
	return time.UTC
}

func parseRule(s string, start caltime.DateOrDateTime) (rrule.ROption, error) {
	opt, err := rrule.StrToROptionInLocation(s, ruleLocation(start))
	if err != nil {
		return rrule.ROption{}, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
	}
	opt.Dtstart = start.Time()
	if _, err := rrule.NewRRule(*opt); err != nil {
		return rrule.ROption{}, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
	}
	return *opt, nil
}
