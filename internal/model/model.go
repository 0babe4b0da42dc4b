package model

import "time"

// Occurrence represents a single concrete instance of a calendar entry
// (after recurrence expansion and timezone normalization).
type Occurrence struct {
	Source string `yaml:"source,omitempty" json:"source,omitempty"` // file the entry was read from
	Kind   string `yaml:"kind" json:"kind"`                           // VEVENT, VTODO or VJOURNAL
	UID    string `yaml:"uid" json:"uid"`                             // iCalendar UID

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// entry. It is the RECURRENCE-ID as written, or DTSTART for entries
	// that do not recur.
	InstanceKey string `yaml:"instance_key" json:"instance_key"`

	Summary     string `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Location    string `yaml:"location,omitempty" json:"location,omitempty"`

	AllDay    bool `yaml:"all_day" json:"all_day"`
	Recurring bool `yaml:"recurring" json:"recurring"`

	// Start / End are in the configured display timezone.
	Start time.Time `yaml:"start" json:"start"`
	End   time.Time `yaml:"end" json:"end"`
}
