// Package interop converts between icalkit components and the object models
// of other iCalendar libraries, so input can be read through them and still
// be verified by icalkit.
package interop

import (
	"errors"
	"sort"
	"strings"

	"icalkit/internal/contentline"
	"icalkit/internal/ics"
)

var ErrNoCalendar = errors.New("no VCALENDAR in input")

// paramLine builds a content line from a name, a parameter map and a value.
// Map keys are emitted in sorted order so conversions are deterministic.
func paramLine(name string, params map[string][]string, value string) contentline.ContentLine {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cl := contentline.New(name, value)
	for _, k := range keys {
		vs := make([]string, len(params[k]))
		for i, v := range params[k] {
			vs[i] = quoteParam(v)
		}
		cl.Params = append(cl.Params, contentline.Param{Name: strings.ToUpper(k), Values: vs})
	}
	return cl
}

// quoteParam restores the quotes a parameter value needs to be written back.
func quoteParam(v string) string {
	if strings.ContainsAny(v, ";:,") {
		return `"` + v + `"`
	}
	return v
}

// children lists the nested components of c in document order.
func children(c ics.Component) []ics.Component {
	var out []ics.Component
	switch v := c.(type) {
	case *ics.Calendar:
		return v.Components()
	case *ics.Event:
		for _, a := range v.Alarms() {
			out = append(out, a)
		}
	case *ics.Todo:
		for _, a := range v.Alarms() {
			out = append(out, a)
		}
	case *ics.VTimezone:
		for _, t := range v.Transitions() {
			out = append(out, t)
		}
	}
	return out
}
