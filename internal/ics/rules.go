package ics

import (
	"icalkit/internal/contentline"
)

// propertyRules is the cardinality table of one component kind. Properties
// not named here may repeat freely.
type propertyRules struct {
	required  []string
	optional  []string
	exclusive [][2]string
	together  [][2]string
}

func (r propertyRules) check(props []contentline.ContentLine) error {
	counts := make(map[string]int, len(props))
	for _, cl := range props {
		counts[cl.Name]++
	}

	for _, name := range r.required {
		switch n := counts[name]; {
		case n == 0:
			return missingProperty(name)
		case n > 1:
			return conflict("multiple instances of " + name)
		}
	}
	for _, name := range r.optional {
		if counts[name] > 1 {
			return conflict("multiple instances of " + name)
		}
	}
	for _, pair := range r.exclusive {
		if counts[pair[0]] > 0 && counts[pair[1]] > 0 {
			return conflict(pair[0] + " and " + pair[1] + " are mutually exclusive")
		}
	}
	for _, pair := range r.together {
		if (counts[pair[0]] > 0) != (counts[pair[1]] > 0) {
			return conflict(pair[0] + " and " + pair[1] + " must appear together")
		}
	}
	return nil
}

// with returns a copy of r with extra required properties.
func (r propertyRules) with(required ...string) propertyRules {
	out := r
	out.required = append(append([]string(nil), r.required...), required...)
	opt := make([]string, 0, len(r.optional))
	for _, name := range r.optional {
		keep := true
		for _, req := range required {
			if name == req {
				keep = false
			}
		}
		if keep {
			opt = append(opt, name)
		}
	}
	out.optional = opt
	return out
}

var (
	calendarRules = propertyRules{
		required: []string{"VERSION", "PRODID"},
		optional: []string{"CALSCALE", "METHOD"},
	}

	eventRules = propertyRules{
		required: []string{"UID"},
		optional: []string{
			"DTSTAMP", "DTSTART", "CLASS", "CREATED", "DESCRIPTION", "GEO",
			"LAST-MODIFIED", "LOCATION", "ORGANIZER", "PRIORITY", "SEQUENCE",
			"STATUS", "SUMMARY", "TRANSP", "URL", "RECURRENCE-ID", "DTEND", "DURATION",
		},
		exclusive: [][2]string{{"DTEND", "DURATION"}},
	}

	todoRules = propertyRules{
		required: []string{"UID", "DTSTAMP"},
		optional: []string{
			"CLASS", "COMPLETED", "CREATED", "DESCRIPTION", "DTSTART", "GEO",
			"LAST-MODIFIED", "LOCATION", "ORGANIZER", "PERCENT-COMPLETE", "PRIORITY",
			"RECURRENCE-ID", "SEQUENCE", "STATUS", "SUMMARY", "URL", "DUE", "DURATION",
		},
		exclusive: [][2]string{{"DUE", "DURATION"}},
	}

	journalRules = propertyRules{
		required: []string{"UID", "DTSTAMP"},
		optional: []string{
			"CLASS", "CREATED", "DTSTART", "LAST-MODIFIED", "ORGANIZER",
			"RECURRENCE-ID", "SEQUENCE", "STATUS", "SUMMARY", "URL",
		},
	}

	freeBusyRules = propertyRules{
		required: []string{"UID", "DTSTAMP"},
		optional: []string{"CONTACT", "DTSTART", "DTEND", "ORGANIZER", "URL"},
	}

	alarmRules = propertyRules{
		required: []string{"ACTION", "TRIGGER"},
		optional: []string{"DURATION", "REPEAT", "DESCRIPTION", "SUMMARY"},
		together: [][2]string{{"DURATION", "REPEAT"}},
	}

	timezoneRules = propertyRules{
		required: []string{"TZID"},
		optional: []string{"LAST-MODIFIED", "TZURL", "X-LIC-LOCATION"},
	}

	transitionRules = propertyRules{
		required: []string{"DTSTART", "TZOFFSETFROM", "TZOFFSETTO"},
	}
)
