package caltime

import (
	"fmt"
	"strings"
	"time"
	// Embedded IANA database so resolution does not depend on the host.
	_ "time/tzdata"

	appLog "icalkit/internal/log"
)

// Timezone is either floating (Local) or a resolved IANA zone.
type Timezone struct {
	loc *time.Location
}

// Local is the floating timezone: wall clock only, no offset.
func Local() Timezone { return Timezone{} }

// UTC is the zone written with a trailing Z.
func UTC() Timezone { return Timezone{loc: time.UTC} }

// Olson wraps a resolved location. A nil location yields Local.
func Olson(loc *time.Location) Timezone { return Timezone{loc: loc} }

func (tz Timezone) IsLocal() bool { return tz.loc == nil }

func (tz Timezone) IsUTC() bool { return tz.loc == time.UTC }

// Location returns the resolved zone, or nil for floating values.
func (tz Timezone) Location() *time.Location { return tz.loc }

// Name is the IANA name, empty for floating values.
func (tz Timezone) Name() string {
	if tz.loc == nil {
		return ""
	}
	return tz.loc.String()
}

func (tz Timezone) String() string {
	if tz.loc == nil {
		return "Local"
	}
	return tz.loc.String()
}

func (tz Timezone) Equal(o Timezone) bool {
	return tz.Name() == o.Name()
}

// wall is the location used to hold the time.Time of a value in this zone.
// Floating values keep their wall clock in UTC.
func (tz Timezone) wall() *time.Location {
	if tz.loc == nil {
		return time.UTC
	}
	return tz.loc
}

// Table maps declared TZIDs to their resolved location. A nil entry means the
// TZID was declared but could not be resolved.
type Table map[string]*time.Location

// Lookup resolves a TZID referenced by a property parameter. Declared but
// unresolved identifiers give a floating timezone.
func (t Table) Lookup(tzid string) (Timezone, error) {
	loc, ok := t[tzid]
	if !ok {
		return Local(), fmt.Errorf("%w: %s", ErrUndeclaredTZID, tzid)
	}
	return Olson(loc), nil
}

// Resolve finds the IANA location for a VTIMEZONE. It tries the location hint
// (X-LIC-LOCATION), then the TZID itself, then known proprietary names, and
// finally the trailing Region/City of vendor-prefixed identifiers such as
// "/mozilla.org/20050126_1/Europe/Berlin". It returns nil when nothing matches.
func Resolve(hint, tzid string) *time.Location {
	for _, name := range []string{hint, tzid} {
		if loc := loadIANA(name); loc != nil {
			return loc
		}
	}
	if name, ok := windowsZones[strings.TrimSpace(tzid)]; ok {
		if loc := loadIANA(name); loc != nil {
			return loc
		}
	}
	if loc := loadPrefixed(tzid); loc != nil {
		return loc
	}

	appLog.Debug("timezone unresolved", "tzid", tzid, "location", hint)
	return nil
}

func loadIANA(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	return loc
}

func loadPrefixed(tzid string) *time.Location {
	if !strings.HasPrefix(tzid, "/") {
		return nil
	}
	parts := strings.Split(strings.Trim(tzid, "/"), "/")
	for i := 1; i+1 < len(parts); i++ {
		if loc := loadIANA(strings.Join(parts[i:], "/")); loc != nil {
			return loc
		}
	}
	return nil
}
