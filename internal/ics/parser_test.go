package ics

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
)

// crlf joins lines into CRLF-terminated text.
func crlf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func calendar(body ...string) []byte {
	lines := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//icalkit//test//EN"}, body...)
	return crlf(append(lines, "END:VCALENDAR")...)
}

var berlinTimezone = []string{
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
}

func withLines(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func TestParseCalendarRoundTrip(t *testing.T) {
	input := calendar(withLines(berlinTimezone, []string{
		"BEGIN:VEVENT",
		"UID:round-trip@example.com",
		"DTSTAMP:20201201T080000Z",
		"DTSTART;TZID=Europe/Berlin:20201206T170000",
		"DTEND;TZID=Europe/Berlin:20201206T180000",
		"SUMMARY:Advent concert\\, second Sunday",
		"ATTENDEE;CN=\"Doe, Jane\";ROLE=REQ-PARTICIPANT:mailto:jane@example.com",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"DESCRIPTION:Reminder",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
		"BEGIN:VTODO",
		"UID:todo@example.com",
		"DTSTAMP:20201201T080000Z",
		"DUE;VALUE=DATE:20201224",
		"SUMMARY:Buy presents",
		"END:VTODO",
	})...)

	cal, err := ParseCalendar(input)
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	if got := cal.Generate(); got != string(input) {
		t.Fatalf("Generate mismatch\n got: %q\nwant: %q", got, input)
	}

	again, err := ParseCalendar([]byte(cal.Generate()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.Generate() != cal.Generate() {
		t.Fatal("second round trip differs")
	}

	if n := len(cal.Events()); n != 1 {
		t.Fatalf("Events() = %d, want 1", n)
	}
	ev := cal.Events()[0]
	if got := ev.Text("SUMMARY"); got != "Advent concert, second Sunday" {
		t.Errorf("SUMMARY = %q", got)
	}
	if n := len(ev.Alarms()); n != 1 {
		t.Fatalf("Alarms() = %d, want 1", n)
	}
	if tr := ev.Alarms()[0].Trigger(); tr.Absolute || tr.Offset.Std() != -15*time.Minute {
		t.Errorf("trigger = %+v", tr)
	}
	if n := len(cal.Todos()); n != 1 {
		t.Fatalf("Todos() = %d, want 1", n)
	}
	if due, ok := cal.Todos()[0].Due(); !ok || !due.IsDate() || due.Format() != "20201224" {
		t.Errorf("DUE = %v, %v", due.Format(), ok)
	}
}

func TestParseCalendarZonedStart(t *testing.T) {
	input := calendar(withLines(berlinTimezone, []string{
		"BEGIN:VEVENT",
		"UID:zoned@example.com",
		"DTSTART;TZID=Europe/Berlin:20201206T170000",
		"END:VEVENT",
	})...)
	cal, err := ParseCalendar(input)
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	start, ok := cal.Events()[0].Start()
	if !ok {
		t.Fatal("no DTSTART")
	}
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2020, 12, 6, 17, 0, 0, 0, berlin); !start.Time().Equal(want) {
		t.Errorf("start = %v, want %v", start.Time(), want)
	}
	if start.IsFloating() || start.Timezone().Location() == nil {
		t.Errorf("start should be zoned, got %v", start.Timezone())
	}
	cl, _ := cal.Events()[0].Property("DTSTART")
	if got := cl.Generate(); got != "DTSTART;TZID=Europe/Berlin:20201206T170000\r\n" {
		t.Errorf("DTSTART generates %q", got)
	}
}

func TestEventValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr []error
		// contains is checked against the error text when set.
		contains string
	}{
		{
			name: "missing DTSTART without METHOD",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"END:VEVENT",
			),
			wantErr:  []error{ErrMissingProperty},
			contains: "DTSTART",
		},
		{
			name: "DTEND and DURATION together",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"DTEND:20200101T110000Z",
				"DURATION:PT1H",
				"END:VEVENT",
			),
			wantErr: []error{ErrPropertyConflict},
		},
		{
			name: "missing UID",
			input: calendar(
				"BEGIN:VEVENT",
				"DTSTART:20200101T100000Z",
				"END:VEVENT",
			),
			wantErr: []error{ErrMissingUID, ErrMissingProperty},
		},
		{
			name: "duplicate DTSTART",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"DTSTART:20200102T100000Z",
				"END:VEVENT",
			),
			wantErr: []error{ErrPropertyConflict},
		},
		{
			name: "malformed duration",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"DURATION:P1D12W",
				"END:VEVENT",
			),
			wantErr: []error{ErrInvalidDuration},
		},
		{
			name: "malformed date",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:2020-01-01",
				"END:VEVENT",
			),
			wantErr: []error{ErrInvalidDate},
		},
		{
			name: "malformed rule",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"RRULE:FREQ=SOMETIMES",
				"END:VEVENT",
			),
			wantErr: []error{ErrInvalidRule},
		},
		{
			name: "unsupported value type",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART;VALUE=TEXT:20200101T100000Z",
				"END:VEVENT",
			),
			wantErr: []error{ErrInvalidPropertyType},
		},
		{
			name: "undeclared TZID",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART;TZID=Europe/Paris:20200101T100000",
				"END:VEVENT",
			),
			wantErr: []error{caltime.ErrUndeclaredTZID, ErrInvalidTZID},
		},
		{
			name: "RECURRENCE-ID date against date-time start",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"RECURRENCE-ID;VALUE=DATE:20200101",
				"END:VEVENT",
			),
			wantErr: []error{ErrRecurIDMismatch},
		},
		{
			name: "RECURRENCE-ID floating against UTC start",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"RECURRENCE-ID:20200101T100000",
				"END:VEVENT",
			),
			wantErr: []error{ErrRecurIDMismatch},
		},
		{
			name: "unknown RANGE",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"RECURRENCE-ID;RANGE=THISANDPRIOR:20200101T100000Z",
				"END:VEVENT",
			),
			wantErr: []error{ErrInvalidPropertyValue},
		},
		{
			name: "alarm REPEAT without DURATION",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"BEGIN:VALARM",
				"ACTION:AUDIO",
				"TRIGGER:-PT5M",
				"REPEAT:2",
				"END:VALARM",
				"END:VEVENT",
			),
			wantErr: []error{ErrPropertyConflict},
		},
		{
			name: "alarm without TRIGGER",
			input: calendar(
				"BEGIN:VEVENT",
				"UID:a@example.com",
				"DTSTART:20200101T100000Z",
				"BEGIN:VALARM",
				"ACTION:AUDIO",
				"END:VALARM",
				"END:VEVENT",
			),
			wantErr: []error{ErrMissingProperty},
		},
		{
			name: "todo without DTSTAMP",
			input: calendar(
				"BEGIN:VTODO",
				"UID:a@example.com",
				"END:VTODO",
			),
			wantErr:  []error{ErrMissingProperty},
			contains: "DTSTAMP",
		},
		{
			name: "freebusy with a bad period",
			input: calendar(
				"BEGIN:VFREEBUSY",
				"UID:a@example.com",
				"DTSTAMP:20200101T100000Z",
				"FREEBUSY:20200101T100000Z",
				"END:VFREEBUSY",
			),
			wantErr: []error{caltime.ErrInvalidPeriod},
		},
		{
			name: "timezone transition without offsets",
			input: calendar(
				"BEGIN:VTIMEZONE",
				"TZID:Europe/Berlin",
				"BEGIN:STANDARD",
				"DTSTART:19701025T030000",
				"END:STANDARD",
				"END:VTIMEZONE",
			),
			wantErr:  []error{ErrMissingProperty},
			contains: "TZOFFSETFROM",
		},
		{
			name: "alarm at calendar level",
			input: calendar(
				"BEGIN:VALARM",
				"ACTION:AUDIO",
				"TRIGGER:-PT5M",
				"END:VALARM",
			),
			wantErr: []error{ErrInvalidComponent},
		},
		{
			name: "unknown component",
			input: calendar(
				"BEGIN:X-WIDGET",
				"END:X-WIDGET",
			),
			wantErr: []error{ErrInvalidComponent},
		},
		{
			name:    "mismatched END",
			input:   calendar("BEGIN:VEVENT", "UID:a@example.com", "END:VTODO"),
			wantErr: []error{ErrInvalidComponent},
		},
		{
			name:    "input ends inside a component",
			input:   crlf("BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:x", "BEGIN:VEVENT"),
			wantErr: []error{ErrIncompleteObject},
		},
		{
			name:    "missing header",
			input:   crlf("BEGIN:VEVENT", "END:VEVENT"),
			wantErr: []error{ErrMissingHeader},
		},
		{
			name:    "bad version",
			input:   crlf("BEGIN:VCALENDAR", "VERSION:3.0", "PRODID:x", "END:VCALENDAR"),
			wantErr: []error{ErrInvalidVersion},
		},
		{
			name:    "bad calscale",
			input:   crlf("BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:x", "CALSCALE:JULIAN", "END:VCALENDAR"),
			wantErr: []error{ErrInvalidCalscale},
		},
		{
			name:     "missing PRODID",
			input:    crlf("BEGIN:VCALENDAR", "VERSION:2.0", "END:VCALENDAR"),
			wantErr:  []error{ErrMissingProperty},
			contains: "PRODID",
		},
		{
			name:    "tokenizer error",
			input:   crlf("BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:x", "NOVALUE", "END:VCALENDAR"),
			wantErr: []error{contentline.ErrMissingValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCalendar(tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("error %q is not %v", err, want)
				}
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not mention %s", err, tt.contains)
			}
		})
	}
}

func TestMethodRelaxesDTStart(t *testing.T) {
	input := crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:x",
		"METHOD:CANCEL",
		"BEGIN:VEVENT",
		"UID:a@example.com",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	cal, err := ParseCalendar(input)
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	if _, ok := cal.Events()[0].Start(); ok {
		t.Error("Start() reported a value for an event without DTSTART")
	}
	if m, ok := cal.Method(); !ok || m != "CANCEL" {
		t.Errorf("Method() = %q, %v", m, ok)
	}
}

func TestExpectOne(t *testing.T) {
	one := calendar("BEGIN:VEVENT", "UID:a", "DTSTART:20200101T100000Z", "END:VEVENT")

	if _, err := ParseCalendar(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty input: %v", err)
	}
	if _, err := ParseCalendar(append(append([]byte{}, one...), one...)); !errors.Is(err, ErrTooManyComponents) {
		t.Errorf("two calendars: %v", err)
	}

	broken := bytes.Replace(one, []byte("UID:a\r\n"), nil, 1)
	_, err := ParseCalendar(append(append([]byte{}, one...), broken...))
	if !errors.Is(err, ErrTooManyComponents) || !errors.Is(err, ErrMissingUID) {
		t.Errorf("broken second calendar: %v", err)
	}

	if _, err := ParseCalendar(one); err != nil {
		t.Errorf("one calendar: %v", err)
	}
}

func TestParserResynchronises(t *testing.T) {
	good := calendar("BEGIN:VEVENT", "UID:a", "DTSTART:20200101T100000Z", "END:VEVENT")
	broken := crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:x",
		"BEGIN:VEVENT",
		"UID:b",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	var input []byte
	input = append(input, good...)
	input = append(input, crlf("X-STRAY:1", "X-STRAY:2")...)
	input = append(input, broken...)
	input = append(input, good...)

	p := NewCalendarParser(bytes.NewReader(input))

	if _, err := p.Next(); err != nil {
		t.Fatalf("first calendar: %v", err)
	}
	if _, err := p.Next(); !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("stray lines: got %v, want ErrMissingHeader", err)
	}
	if _, err := p.Next(); !errors.Is(err, ErrMissingProperty) {
		t.Fatalf("broken calendar: got %v, want ErrMissingProperty", err)
	}
	if _, err := p.Next(); err != nil {
		t.Fatalf("last calendar: %v", err)
	}
	if _, err := p.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("end: got %v, want io.EOF", err)
	}
}

func TestEventParserWithScope(t *testing.T) {
	input := crlf(
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTART;TZID=Office:20200101T100000",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b",
		"DTSTART;VALUE=DATE:20200102",
		"END:VEVENT",
	)
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	p := NewEventParser(bytes.NewReader(input), Scope{Timezones: caltime.Table{"Office": berlin}})

	var uids []string
	for {
		ev, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		uids = append(uids, ev.UID())
	}
	if strings.Join(uids, ",") != "a,b" {
		t.Errorf("uids = %v", uids)
	}
}

func TestTimezoneParser(t *testing.T) {
	p := NewTimezoneParser(bytes.NewReader(crlf(berlinTimezone...)))
	tz, err := p.ExpectOne()
	if err != nil {
		t.Fatalf("ExpectOne: %v", err)
	}
	if tz.TZID() != "Europe/Berlin" || tz.Location() == nil {
		t.Fatalf("tz = %s, %v", tz.TZID(), tz.Location())
	}
	trs := tz.Transitions()
	if len(trs) != 2 || !trs[0].Daylight() || trs[1].Daylight() {
		t.Fatalf("transitions = %d", len(trs))
	}
	if from, to := trs[0].Offsets(); from != 3600 || to != 7200 {
		t.Errorf("daylight offsets = %d, %d", from, to)
	}
	if got := tz.Generate(); got != string(crlf(berlinTimezone...)) {
		t.Errorf("Generate = %q", got)
	}
}

func TestLongLinesRoundTrip(t *testing.T) {
	desc := strings.Repeat("Schöne Grüße aus dem Kalender, ", 8)
	draft := &CalendarDraft{
		Properties: []contentline.ContentLine{
			contentline.New("VERSION", "2.0"),
			contentline.New("PRODID", "x"),
		},
	}
	ev := &EventDraft{Properties: []contentline.ContentLine{
		contentline.New("UID", "long@example.com"),
		contentline.New("DTSTART", "20200101T100000Z"),
		contentline.New("DESCRIPTION", contentline.EscapeText(desc)),
	}}
	if err := draft.AddChild(ev); err != nil {
		t.Fatal(err)
	}
	cal, err := draft.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	text := cal.Generate()
	for _, line := range strings.Split(strings.TrimSuffix(text, "\r\n"), "\r\n") {
		if n := len([]rune(line)); n > 75 {
			t.Fatalf("physical line of %d characters: %q", n, line)
		}
	}
	back, err := ParseCalendar([]byte(text))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got := back.Events()[0].Text("DESCRIPTION"); got != desc {
		t.Errorf("DESCRIPTION = %q", got)
	}
	if back.Generate() != text {
		t.Error("round trip differs")
	}
}

func TestToDraftKeepsEverything(t *testing.T) {
	input := calendar(withLines(berlinTimezone, []string{
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTART;TZID=Europe/Berlin:20201206T170000",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER;RELATED=END:PT0S",
		"END:VALARM",
		"END:VEVENT",
	})...)
	cal, err := ParseCalendar(input)
	if err != nil {
		t.Fatal(err)
	}
	d := cal.ToDraft()
	d.Properties = append(d.Properties, contentline.New("X-WR-CALNAME", "Edited"))
	edited, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cal.Text("X-WR-CALNAME") != "" {
		t.Error("editing the draft changed the original")
	}
	if edited.Text("X-WR-CALNAME") != "Edited" {
		t.Error("edit lost")
	}
	if !strings.Contains(edited.Generate(), "TRIGGER;RELATED=END:PT0S\r\n") {
		t.Error("alarm lost on the way through ToDraft")
	}
}

func TestTimezoneResolution(t *testing.T) {
	zone := func(tzid string, extra ...string) []string {
		lines := append([]string{"BEGIN:VTIMEZONE", "TZID:" + tzid}, extra...)
		return append(lines,
			"BEGIN:STANDARD",
			"TZOFFSETFROM:+0100",
			"TZOFFSETTO:+0100",
			"DTSTART:19700101T000000",
			"END:STANDARD",
			"END:VTIMEZONE",
		)
	}
	cal := mustCalendar(t, calendar(withLines(
		zone("HELLO_Europe/Berlin", "X-LIC-LOCATION:Europe/Berlin"),
		zone("Mars/Olympus"),
		[]string{
			"BEGIN:VEVENT",
			"UID:hinted",
			"DTSTART;TZID=HELLO_Europe/Berlin:20200106T090000",
			"END:VEVENT",
			"BEGIN:VEVENT",
			"UID:unknown",
			"DTSTART;TZID=Mars/Olympus:20200106T090000",
			"END:VEVENT",
		},
	)...))

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d", len(events))
	}

	hinted, _ := events[0].Start()
	if hinted.IsFloating() {
		t.Fatal("hinted start is floating")
	}
	if want := time.Date(2020, 1, 6, 8, 0, 0, 0, time.UTC); !hinted.Time().Equal(want) {
		t.Errorf("hinted start = %v, want %v", hinted.Time().UTC(), want)
	}

	unknown, _ := events[1].Start()
	if !unknown.IsFloating() {
		t.Errorf("unresolvable TZID should give a floating start, got %v", unknown.Timezone())
	}
	if unknown.Format() != "20200106T090000" {
		t.Errorf("floating start = %s", unknown.Format())
	}
}
