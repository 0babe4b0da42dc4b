package ics

import (
	"strings"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// normalizeProperties rewrites zoned date and date-time properties to UTC
// or floating form and drops their TZID parameter. Values without TZID are
// already canonical and are left untouched.
func normalizeProperties(props []contentline.ContentLine, scope Scope) ([]contentline.ContentLine, error) {
	out := make([]contentline.ContentLine, len(props))
	for i, cl := range props {
		out[i] = cl.Clone()
		if !cl.Params.Has("TZID") {
			continue
		}
		var (
			values []string
			err    error
		)
		switch cl.Name {
		case "DTSTART", "DTEND", "DUE", "RECURRENCE-ID", "EXDATE":
			values, err = normalizeDates(cl, scope)
		case "RDATE":
			values, err = normalizeDatesOrPeriods(cl, scope)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		out[i].Value = strings.Join(values, ",")
		out[i].Params = out[i].Params.Remove("TZID")
	}
	return out, nil
}

func normalizeDates(cl contentline.ContentLine, scope Scope) ([]string, error) {
	vs, err := dateOrDateTimeList(cl, caltime.ValueDateTime, scope)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.UTCOrLocal().Format()
	}
	return out, nil
}

func normalizeDatesOrPeriods(cl contentline.ContentLine, scope Scope) ([]string, error) {
	vs, err := dateOrPeriodList(cl, caltime.ValueDateTime, scope)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.UTCOrLocal().Format()
	}
	return out, nil
}
