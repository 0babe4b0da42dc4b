package ics

import (
	"fmt"
	"sort"
	"sync"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// Object is one logical calendar entry: a main instance plus the overrides
// that replace single occurrences of it, with the calendar properties and
// timezones needed to emit it on its own.
type Object struct {
	props      properties
	vtimezones []*VTimezone
	data       ObjectData

	tzOnce  sync.Once
	tzTable caltime.Table
}

func newObject(props []contentline.ContentLine, vtzs []*VTimezone, data ObjectData) *Object {
	return &Object{props: props, vtimezones: vtzs, data: data}
}

// ObjectData is the payload of an Object. It is one of *EventData,
// *TodoData or *JournalData.
type ObjectData interface {
	Kind() string
	UID() string
	components() []Component
	first() (caltime.DateOrDateTime, bool)
	last() (caltime.DateOrDateTime, bool)
	expand(opts ExpandOptions, scope Scope) (ObjectData, bool, error)
}

// EventData is the payload of a VEVENT object.
type EventData struct {
	main      *Event
	overrides []*Event
}

// TodoData is the payload of a VTODO object.
type TodoData struct {
	main      *Todo
	overrides []*Todo
}

// JournalData is the payload of a VJOURNAL object.
type JournalData struct {
	main      *Journal
	overrides []*Journal
}

// NewEventData groups instances sharing one UID. The main instance is the
// one carrying recurrence data, or the first one when none does.
func NewEventData(events ...*Event) (*EventData, error) {
	main, overrides, err := splitMain(KindEvent, events)
	if err != nil {
		return nil, err
	}
	return &EventData{main: main, overrides: overrides}, nil
}

func NewTodoData(todos ...*Todo) (*TodoData, error) {
	main, overrides, err := splitMain(KindTodo, todos)
	if err != nil {
		return nil, err
	}
	return &TodoData{main: main, overrides: overrides}, nil
}

func NewJournalData(journals ...*Journal) (*JournalData, error) {
	main, overrides, err := splitMain(KindJournal, journals)
	if err != nil {
		return nil, err
	}
	return &JournalData{main: main, overrides: overrides}, nil
}

func (d *EventData) Main() *Event            { return d.main }
func (d *EventData) Overrides() []*Event     { return append([]*Event(nil), d.overrides...) }
func (d *TodoData) Main() *Todo              { return d.main }
func (d *TodoData) Overrides() []*Todo       { return append([]*Todo(nil), d.overrides...) }
func (d *JournalData) Main() *Journal        { return d.main }
func (d *JournalData) Overrides() []*Journal { return append([]*Journal(nil), d.overrides...) }

func (d *EventData) Kind() string   { return KindEvent }
func (d *TodoData) Kind() string    { return KindTodo }
func (d *JournalData) Kind() string { return KindJournal }

func (d *EventData) UID() string   { return d.main.UID() }
func (d *TodoData) UID() string    { return d.main.UID() }
func (d *JournalData) UID() string { return d.main.UID() }

func (d *EventData) components() []Component {
	return asComponents(append([]*Event{d.main}, d.overrides...))
}

func (d *TodoData) components() []Component {
	return asComponents(append([]*Todo{d.main}, d.overrides...))
}

func (d *JournalData) components() []Component {
	return asComponents(append([]*Journal{d.main}, d.overrides...))
}

func (d *EventData) first() (caltime.DateOrDateTime, bool) {
	return earliestStart(append([]*Event{d.main}, d.overrides...))
}

func (d *TodoData) first() (caltime.DateOrDateTime, bool) {
	return earliestStart(append([]*Todo{d.main}, d.overrides...))
}

func (d *JournalData) first() (caltime.DateOrDateTime, bool) {
	return earliestStart(append([]*Journal{d.main}, d.overrides...))
}

func (d *EventData) last() (caltime.DateOrDateTime, bool) {
	if d.main.HasRecurrence() {
		return caltime.DateOrDateTime{}, false
	}
	return latest(append([]*Event{d.main}, d.overrides...), (*Event).End)
}

func (d *TodoData) last() (caltime.DateOrDateTime, bool) {
	if d.main.HasRecurrence() {
		return caltime.DateOrDateTime{}, false
	}
	return latest(append([]*Todo{d.main}, d.overrides...), (*Todo).Due)
}

func (d *JournalData) last() (caltime.DateOrDateTime, bool) {
	return caltime.DateOrDateTime{}, false
}

// entryComponent is what events, to-dos and journal entries share.
type entryComponent interface {
	Component
	UID() string
	Start() (caltime.DateOrDateTime, bool)
	RecurrenceID() (RecurrenceID, bool)
	Recurrence() Recurrence
	HasRecurrence() bool
}

func splitMain[T entryComponent](kind string, items []T) (T, []T, error) {
	var zero T
	if len(items) == 0 {
		return zero, nil, invalidComponent("empty " + kind + " object")
	}
	uid := items[0].UID()
	mainIdx := -1
	for i, it := range items {
		if it.UID() != uid {
			return zero, nil, fmt.Errorf("%w: %q and %q", ErrDifferingUIDs, uid, it.UID())
		}
		if !it.HasRecurrence() {
			continue
		}
		if mainIdx >= 0 {
			return zero, nil, fmt.Errorf("%w: %s %q", ErrMultipleMainObjects, kind, uid)
		}
		mainIdx = i
	}
	// Without recurrence data the first instance is taken as main, even if
	// a later one lacks a RECURRENCE-ID too.
	if mainIdx < 0 {
		mainIdx = 0
	}

	overrides := make([]T, 0, len(items)-1)
	for i, it := range items {
		if i == mainIdx {
			continue
		}
		if _, ok := it.RecurrenceID(); !ok {
			return zero, nil, fmt.Errorf("%w: %s %q", ErrMissingRecurrenceID, kind, uid)
		}
		overrides = append(overrides, it)
	}
	sort.SliceStable(overrides, func(i, j int) bool {
		a, _ := overrides[i].RecurrenceID()
		b, _ := overrides[j].RecurrenceID()
		return a.Value.Compare(b.Value) < 0
	})
	return items[mainIdx], overrides, nil
}

func earliestStart[T entryComponent](items []T) (caltime.DateOrDateTime, bool) {
	var (
		best  caltime.DateOrDateTime
		found bool
	)
	for _, it := range items {
		if s, ok := it.Start(); ok && (!found || s.Compare(best) < 0) {
			best, found = s, true
		}
	}
	return best, found
}

func latest[T any](items []T, end func(T) (caltime.DateOrDateTime, bool)) (caltime.DateOrDateTime, bool) {
	var (
		best  caltime.DateOrDateTime
		found bool
	)
	for _, it := range items {
		if e, ok := end(it); ok && (!found || e.Compare(best) > 0) {
			best, found = e, true
		}
	}
	return best, found
}

func (o *Object) Data() ObjectData { return o.data }

func (o *Object) UID() string { return o.data.UID() }

func (o *Object) Kind() string { return o.data.Kind() }

// Properties returns the calendar-level properties.
func (o *Object) Properties() []contentline.ContentLine { return o.props.Properties() }

func (o *Object) VTimezones() []*VTimezone { return append([]*VTimezone(nil), o.vtimezones...) }

// Timezones returns the table of the object's TZIDs, computed on first use.
func (o *Object) Timezones() caltime.Table {
	o.tzOnce.Do(func() {
		o.tzTable = timezoneTable(o.vtimezones)
	})
	return o.tzTable
}

// FirstOccurrence is the earliest DTSTART over the main instance and its
// overrides.
func (o *Object) FirstOccurrence() (caltime.DateOrDateTime, bool) { return o.data.first() }

// LastOccurrence is the latest end over all instances. It is unknown for
// recurring objects and for journal entries.
func (o *Object) LastOccurrence() (caltime.DateOrDateTime, bool) { return o.data.last() }

// Generate emits the object as a complete VCALENDAR.
func (o *Object) Generate() string {
	children := asComponents(o.vtimezones)
	children = append(children, o.data.components()...)
	return render(KindCalendar, o.props, children)
}

// FromObjects assembles objects into one calendar. VTIMEZONEs are merged by
// TZID, first declaration wins.
func FromObjects(prodID string, objs ...*Object) *Calendar {
	c := &Calendar{
		properties: properties{
			contentline.New("VERSION", "2.0"),
			contentline.New("PRODID", prodID),
			contentline.New("CALSCALE", "GREGORIAN"),
		},
	}
	seen := map[string]bool{}
	for _, o := range objs {
		for _, v := range o.vtimezones {
			if seen[v.TZID()] {
				continue
			}
			seen[v.TZID()] = true
			c.components = append(c.components, v)
		}
	}
	for _, o := range objs {
		c.components = append(c.components, o.data.components()...)
	}
	return c
}
