package interop

import (
	"errors"
	"fmt"
	"io"
	"sort"

	goical "github.com/emersion/go-ical"

	"icalkit/internal/ics"
	appLog "icalkit/internal/log"
)

// DecodeGoICal reads every VCALENDAR in r with github.com/emersion/go-ical
// and returns them as unverified drafts. go-ical keeps properties in a map,
// so properties of a component come back sorted by name; values of the same
// name keep their order.
func DecodeGoICal(r io.Reader) ([]*ics.CalendarDraft, error) {
	dec := goical.NewDecoder(r)
	var out []*ics.CalendarDraft
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			appLog.Error("go-ical decode failed", err, "calendars", len(out))
			return nil, err
		}

		d := &ics.CalendarDraft{}
		addGoProps(d, cal.Props)
		for _, child := range cal.Children {
			if err := addGoComponent(d, child); err != nil {
				return nil, err
			}
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, ErrNoCalendar
	}
	return out, nil
}

func addGoComponent(parent ics.ComponentDraft, comp *goical.Component) error {
	child, err := ics.NewDraft(comp.Name)
	if err != nil {
		return err
	}
	addGoProps(child, comp.Props)
	for _, sub := range comp.Children {
		if err := addGoComponent(child, sub); err != nil {
			return err
		}
	}
	if err := parent.AddChild(child); err != nil {
		return fmt.Errorf("%s: %w", parent.Kind(), err)
	}
	return nil
}

func addGoProps(d ics.ComponentDraft, props goical.Props) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, p := range props[name] {
			d.AddProperty(paramLine(p.Name, p.Params, p.Value))
		}
	}
}

// EncodeGoICal writes a verified calendar through go-ical's encoder.
func EncodeGoICal(w io.Writer, cal *ics.Calendar) error {
	out := &goical.Calendar{Component: toGoComponent(cal)}
	if err := goical.NewEncoder(w).Encode(out); err != nil {
		appLog.Error("go-ical encode failed", err)
		return err
	}
	return nil
}

func toGoComponent(c ics.Component) *goical.Component {
	comp := goical.NewComponent(c.Kind())
	for _, cl := range c.Properties() {
		p := goical.Prop{Name: cl.Name, Params: goical.Params{}, Value: cl.Value}
		for _, prm := range cl.Params {
			if _, seen := p.Params[prm.Name]; seen {
				continue
			}
			p.Params[prm.Name] = cl.Params.Values(prm.Name)
		}
		comp.Props[cl.Name] = append(comp.Props[cl.Name], p)
	}
	for _, child := range children(c) {
		comp.Children = append(comp.Children, toGoComponent(child))
	}
	return comp
}
