package ics

import (
	"fmt"
	"strings"
	"sync"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// CalendarDraft is an editable VCALENDAR. Components keeps the children in
// document order.
type CalendarDraft struct {
	Properties []contentline.ContentLine
	Components []ComponentDraft
}

func (d *CalendarDraft) Kind() string { return KindCalendar }

func (d *CalendarDraft) AddProperty(cl contentline.ContentLine) {
	d.Properties = append(d.Properties, cl)
}

func (d *CalendarDraft) AddChild(c ComponentDraft) error {
	switch c.(type) {
	case *EventDraft, *TodoDraft, *JournalDraft, *FreeBusyDraft, *TimezoneDraft:
		d.Components = append(d.Components, c)
		return nil
	}
	return invalidComponent(c.Kind() + " inside " + KindCalendar)
}

// Build verifies the calendar header, then every VTIMEZONE, then the other
// children against the resulting timezone table.
func (d *CalendarDraft) Build() (*Calendar, error) {
	c, err := d.build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindCalendar, err)
	}
	return c, nil
}

func (d *CalendarDraft) build() (*Calendar, error) {
	if err := checkCalendarHeader(d.Properties); err != nil {
		return nil, err
	}
	c := &Calendar{
		properties: cloneLines(d.Properties),
		components: make([]Component, len(d.Components)),
		hasMethod:  hasProperty(d.Properties, "METHOD"),
	}

	for i, child := range d.Components {
		if td, ok := child.(*TimezoneDraft); ok {
			tz, err := td.Build()
			if err != nil {
				return nil, err
			}
			c.components[i] = tz
		}
	}

	scope := Scope{Timezones: c.Timezones(), HasMethod: c.hasMethod}
	for i, child := range d.Components {
		var (
			built Component
			err   error
		)
		switch cd := child.(type) {
		case *TimezoneDraft:
			continue
		case *EventDraft:
			built, err = cd.Build(scope)
		case *TodoDraft:
			built, err = cd.Build(scope)
		case *JournalDraft:
			built, err = cd.Build(scope)
		case *FreeBusyDraft:
			built, err = cd.Build(scope)
		}
		if err != nil {
			return nil, err
		}
		c.components[i] = built
	}
	return c, nil
}

func checkCalendarHeader(props []contentline.ContentLine) error {
	if err := calendarRules.check(props); err != nil {
		return err
	}
	version, err := propVersion.required(props, Scope{})
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(version); v != "2.0" && v != "1.0" {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	if _, err := propProdID.required(props, Scope{}); err != nil {
		return err
	}
	calscale, ok, err := propCalscale.optional(props, Scope{})
	if err != nil {
		return err
	}
	if ok && !strings.EqualFold(strings.TrimSpace(calscale), "GREGORIAN") {
		return fmt.Errorf("%w: %q", ErrInvalidCalscale, calscale)
	}
	if _, _, err := propMethod.optional(props, Scope{}); err != nil {
		return err
	}
	return nil
}

// BuildObject verifies the draft as a single logical object: entries of one
// kind sharing one UID, plus the VTIMEZONEs they need.
func (d *CalendarDraft) BuildObject() (*Object, error) {
	cal, err := d.Build()
	if err != nil {
		return nil, err
	}
	kind := ""
	for _, c := range cal.components {
		switch c.Kind() {
		case KindTimezone:
			continue
		case KindFreeBusy:
			return nil, invalidComponent(KindFreeBusy + " in a calendar object")
		}
		if kind != "" && kind != c.Kind() {
			return nil, invalidComponent(c.Kind() + " mixed with " + kind + " in a calendar object")
		}
		kind = c.Kind()
	}
	if kind == "" {
		return nil, invalidComponent("calendar object without entries")
	}

	objs, err := cal.Objects()
	if err != nil {
		return nil, err
	}
	if len(objs) > 1 {
		return nil, fmt.Errorf("%w: %s and %s", ErrDifferingUIDs, objs[0].UID(), objs[1].UID())
	}
	obj := objs[0]
	// Keep every declared timezone, referenced or not.
	obj.vtimezones = cal.VTimezones()
	return obj, nil
}

// Calendar is a verified VCALENDAR.
type Calendar struct {
	properties
	components []Component
	hasMethod  bool

	tzOnce  sync.Once
	tzTable caltime.Table
}

func (c *Calendar) Kind() string { return KindCalendar }

// Method returns the calendar-level METHOD, if any.
func (c *Calendar) Method() (string, bool) {
	cl, ok := c.Property("METHOD")
	return cl.Value, ok
}

// Components returns every child in document order.
func (c *Calendar) Components() []Component { return append([]Component(nil), c.components...) }

func (c *Calendar) Events() []*Event         { return componentsOf[*Event](c.components) }
func (c *Calendar) Todos() []*Todo           { return componentsOf[*Todo](c.components) }
func (c *Calendar) Journals() []*Journal     { return componentsOf[*Journal](c.components) }
func (c *Calendar) FreeBusys() []*FreeBusy   { return componentsOf[*FreeBusy](c.components) }
func (c *Calendar) VTimezones() []*VTimezone { return componentsOf[*VTimezone](c.components) }

func componentsOf[T Component](in []Component) []T {
	var out []T
	for _, c := range in {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Timezones returns the table of declared TZIDs. It is computed on first use.
func (c *Calendar) Timezones() caltime.Table {
	c.tzOnce.Do(func() {
		c.tzTable = timezoneTable(componentsOf[*VTimezone](c.components))
	})
	return c.tzTable
}

func timezoneTable(vtzs []*VTimezone) caltime.Table {
	t := make(caltime.Table, len(vtzs))
	for _, v := range vtzs {
		t[v.TZID()] = v.Location()
	}
	return t
}

func (c *Calendar) Generate() string {
	return render(KindCalendar, c.properties, c.components)
}

// ToDraft returns an editable copy.
func (c *Calendar) ToDraft() *CalendarDraft {
	d := &CalendarDraft{Properties: cloneLines(c.properties)}
	for _, comp := range c.components {
		switch v := comp.(type) {
		case *Event:
			d.Components = append(d.Components, v.ToDraft())
		case *Todo:
			d.Components = append(d.Components, v.ToDraft())
		case *Journal:
			d.Components = append(d.Components, v.ToDraft())
		case *FreeBusy:
			d.Components = append(d.Components, v.ToDraft())
		case *VTimezone:
			d.Components = append(d.Components, v.ToDraft())
		}
	}
	return d
}

// Objects groups events, to-dos and journal entries by kind and UID, in
// order of first appearance. Each object carries the calendar properties
// and the VTIMEZONEs its entries reference.
func (c *Calendar) Objects() ([]*Object, error) {
	type group struct {
		kind  string
		items []Component
	}
	var (
		order  []string
		groups = map[string]*group{}
	)
	for _, comp := range c.components {
		var uid string
		switch v := comp.(type) {
		case *Event:
			uid = v.UID()
		case *Todo:
			uid = v.UID()
		case *Journal:
			uid = v.UID()
		default:
			continue
		}
		key := comp.Kind() + "\x00" + uid
		g, ok := groups[key]
		if !ok {
			g = &group{kind: comp.Kind()}
			groups[key] = g
			order = append(order, key)
		}
		g.items = append(g.items, comp)
	}

	vtzs := c.VTimezones()
	out := make([]*Object, 0, len(order))
	for _, key := range order {
		g := groups[key]
		var (
			data ObjectData
			err  error
		)
		switch g.kind {
		case KindEvent:
			data, err = NewEventData(componentsOf[*Event](g.items)...)
		case KindTodo:
			data, err = NewTodoData(componentsOf[*Todo](g.items)...)
		case KindJournal:
			data, err = NewJournalData(componentsOf[*Journal](g.items)...)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, newObject(cloneLines(c.properties), referencedTimezones(vtzs, g.items), data))
	}
	return out, nil
}

// referencedTimezones keeps the VTIMEZONEs whose TZID appears as a TZID
// parameter anywhere in items, including nested alarms.
func referencedTimezones(vtzs []*VTimezone, items []Component) []*VTimezone {
	used := map[string]bool{}
	var walk func(c Component)
	walk = func(c Component) {
		for _, cl := range c.Properties() {
			if tzid, ok := cl.Params.Get("TZID"); ok {
				used[tzid] = true
			}
		}
		switch v := c.(type) {
		case *Event:
			for _, a := range v.alarms {
				walk(a)
			}
		case *Todo:
			for _, a := range v.alarms {
				walk(a)
			}
		}
	}
	for _, c := range items {
		walk(c)
	}
	var out []*VTimezone
	for _, v := range vtzs {
		if used[v.TZID()] {
			out = append(out, v)
		}
	}
	return out
}
