package interop

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"icalkit/internal/ics"
)

var sample = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//icalkit//interop test//EN",
	"BEGIN:VTIMEZONE",
	"TZID:Europe/Berlin",
	"BEGIN:DAYLIGHT",
	"TZOFFSETFROM:+0100",
	"TZOFFSETTO:+0200",
	"TZNAME:CEST",
	"DTSTART:19700329T020000",
	"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU",
	"END:DAYLIGHT",
	"BEGIN:STANDARD",
	"TZOFFSETFROM:+0200",
	"TZOFFSETTO:+0100",
	"TZNAME:CET",
	"DTSTART:19701025T030000",
	"RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
	"END:STANDARD",
	"END:VTIMEZONE",
	"BEGIN:VEVENT",
	"UID:standup@example.com",
	"DTSTAMP:20200101T000000Z",
	"DTSTART;TZID=Europe/Berlin:20200106T090000",
	"DTEND;TZID=Europe/Berlin:20200106T091500",
	"RRULE:FREQ=WEEKLY;BYDAY=MO,WE;COUNT=6",
	`SUMMARY:Team\, weekly`,
	`ATTENDEE;CN="Doe, Jane":mailto:jane@example.com`,
	"BEGIN:VALARM",
	"ACTION:DISPLAY",
	"DESCRIPTION:Standup",
	"TRIGGER:-PT5M",
	"END:VALARM",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n")

// checkSample verifies what both adapters must preserve.
func checkSample(t *testing.T, cal *ics.Calendar) {
	t.Helper()

	if n := len(cal.VTimezones()); n != 1 {
		t.Fatalf("VTIMEZONEs = %d, want 1", n)
	}
	if n := len(cal.VTimezones()[0].Transitions()); n != 2 {
		t.Errorf("transitions = %d, want 2", n)
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.UID() != "standup@example.com" {
		t.Errorf("uid = %q", ev.UID())
	}
	if got := ev.Text("SUMMARY"); got != "Team, weekly" {
		t.Errorf("summary = %q", got)
	}
	start, ok := ev.Start()
	if !ok {
		t.Fatal("no start")
	}
	if want := time.Date(2020, 1, 6, 8, 0, 0, 0, time.UTC); !start.Time().Equal(want) {
		t.Errorf("start = %v, want %v", start.Time().UTC(), want)
	}
	if !ev.HasRecurrence() {
		t.Error("RRULE lost")
	}
	if n := len(ev.Alarms()); n != 1 {
		t.Errorf("alarms = %d, want 1", n)
	}

	att, ok := ev.Property("ATTENDEE")
	if !ok {
		t.Fatal("ATTENDEE lost")
	}
	if cn, _ := att.Params.Get("CN"); cn != "Doe, Jane" {
		t.Errorf("CN = %q", cn)
	}
	if att.Value != "mailto:jane@example.com" {
		t.Errorf("attendee = %q", att.Value)
	}
}

func TestFromGolangICal(t *testing.T) {
	d, err := FromGolangICal(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("FromGolangICal: %v", err)
	}
	cal, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	checkSample(t, cal)

	text := cal.Generate()
	for _, want := range []string{
		"SUMMARY:Team\\, weekly\r\n",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,WE;COUNT=6\r\n",
		"ATTENDEE;CN=\"Doe, Jane\":mailto:jane@example.com\r\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("generated text lacks %q", want)
		}
	}
}

func TestFromGolangICalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not a calendar", input: "BEGIN:VEVENT\r\nUID:a\r\nEND:VEVENT\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromGolangICal(strings.NewReader(tt.input)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFromGolangICalStillVerifies(t *testing.T) {
	input := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//icalkit//interop test//EN",
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTART:20200101T100000Z",
		"DTEND:20200101T110000Z",
		"DURATION:PT1H",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	d, err := FromGolangICal(strings.NewReader(input))
	if err != nil {
		t.Fatalf("FromGolangICal: %v", err)
	}
	if _, err := d.Build(); !errors.Is(err, ics.ErrPropertyConflict) {
		t.Errorf("Build = %v, want ErrPropertyConflict", err)
	}
}

func TestDecodeGoICal(t *testing.T) {
	drafts, err := DecodeGoICal(strings.NewReader(sample + sample))
	if err != nil {
		t.Fatalf("DecodeGoICal: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("calendars = %d, want 2", len(drafts))
	}
	for _, d := range drafts {
		cal, err := d.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		checkSample(t, cal)
	}

	if _, err := DecodeGoICal(strings.NewReader("")); !errors.Is(err, ErrNoCalendar) {
		t.Errorf("empty input: %v", err)
	}
}

func TestEncodeGoICal(t *testing.T) {
	cal, err := ics.ParseCalendar([]byte(sample))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeGoICal(&buf, cal); err != nil {
		t.Fatalf("EncodeGoICal: %v", err)
	}
	back, err := ics.ParseCalendar(buf.Bytes())
	if err != nil {
		t.Fatalf("encoded text does not parse: %v\n%s", err, buf.String())
	}
	checkSample(t, back)
}
