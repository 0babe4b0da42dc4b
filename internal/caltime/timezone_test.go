package caltime

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name, hint, tzid, want string
	}{
		{"location hint wins", "Europe/Berlin", "HELLO_Europe/Berlin", "Europe/Berlin"},
		{"iana tzid", "", "America/New_York", "America/New_York"},
		{"bad hint falls through", "Nowhere/Special", "Asia/Tokyo", "Asia/Tokyo"},
		{"windows name", "", "W. Europe Standard Time", "Europe/Berlin"},
		{"windows display name", "", "(UTC-05:00) Eastern Time (US & Canada)", "America/New_York"},
		{"vendor prefix", "", "/mozilla.org/20050126_1/Europe/Paris", "Europe/Paris"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := Resolve(tt.hint, tt.tzid)
			if loc == nil || loc.String() != tt.want {
				t.Fatalf("Resolve(%q, %q) = %v, want %s", tt.hint, tt.tzid, loc, tt.want)
			}
		})
	}

	if loc := Resolve("", "Custom Zone Nobody Knows"); loc != nil {
		t.Errorf("unknown zone resolved to %v", loc)
	}
	if loc := Resolve("", "Local"); loc != nil {
		t.Errorf("Local resolved to %v", loc)
	}
}

func TestTableLookup(t *testing.T) {
	table := Table{
		"Berlin":  Resolve("Europe/Berlin", "Berlin"),
		"Unknown": nil,
	}

	tz, err := table.Lookup("Berlin")
	if err != nil || tz.Name() != "Europe/Berlin" {
		t.Errorf("Lookup(Berlin) = %v, %v", tz, err)
	}

	tz, err = table.Lookup("Unknown")
	if err != nil || !tz.IsLocal() {
		t.Errorf("declared unknown should be floating, got %v, %v", tz, err)
	}

	if _, err := table.Lookup("Nope"); !errors.Is(err, ErrUndeclaredTZID) {
		t.Errorf("undeclared err = %v", err)
	}
}
