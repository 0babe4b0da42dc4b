package contentline

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ContentLine
	}{
		{
			in:   "DTSTART;TZID=Europe/Berlin:20201206T170000",
			want: ContentLine{Name: "DTSTART", Params: Params{{Name: "TZID", Values: []string{"Europe/Berlin"}}}, Value: "20201206T170000"},
		},
		{
			in:   "summary:Hello",
			want: ContentLine{Name: "SUMMARY", Value: "Hello"},
		},
		{
			in:   "UID:",
			want: ContentLine{Name: "UID"},
		},
		{
			in: `ATTENDEE;cn="Doe, John";ROLE=REQ-PARTICIPANT:mailto:john@example.com`,
			want: ContentLine{Name: "ATTENDEE", Params: Params{
				{Name: "CN", Values: []string{`"Doe, John"`}},
				{Name: "ROLE", Values: []string{"REQ-PARTICIPANT"}},
			}, Value: "mailto:john@example.com"},
		},
		{
			in: "ATTENDEE;DELEGATED-TO=a,b;X=1;X=2:mailto:x",
			want: ContentLine{Name: "ATTENDEE", Params: Params{
				{Name: "DELEGATED-TO", Values: []string{"a", "b"}},
				{Name: "X", Values: []string{"1"}},
				{Name: "X", Values: []string{"2"}},
			}, Value: "mailto:x"},
		},
		{
			in:   `X-P;K=a\;b\,c\:d\\e\nf:v`,
			want: ContentLine{Name: "X-P", Params: Params{{Name: "K", Values: []string{"a;b,c:d\\e\nf"}}}, Value: "v"},
		},
		{
			in:   "X;EMPTY=:v",
			want: ContentLine{Name: "X", Params: Params{{Name: "EMPTY", Values: []string{""}}}, Value: "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(Line{Text: tt.in, Number: 1})
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse = %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{":value", ErrMissingName},
		{";P=1:value", ErrMissingName},
		{"NOVALUE", ErrMissingValue},
		{"X;P=1", ErrMissingValue},
		{`X;P="open:v`, ErrMissingClosingQuote},
		{"X;P:v", ErrMissingDelimiter},
		{"X;=1:v", ErrMissingParamKey},
		{"X;", ErrMissingContentAfter},
		{"X;P=a,", ErrMissingContentAfter},
		{`X;P="a"b:v`, ErrMissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(Line{Text: tt.in, Number: 7})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q) err = %v, want %v", tt.in, err, tt.want)
			}
			var se *SyntaxError
			if !errors.As(err, &se) || se.Line != 7 {
				t.Errorf("missing line number in %v", err)
			}
		})
	}
}

func TestParamsAccessors(t *testing.T) {
	cl, err := Parse(Line{Text: `X;CN="a \"b\"";MEMBER=x,y;MEMBER=z:v`, Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := cl.Params.Get("cn"); !ok || v != `a "b"` {
		t.Errorf("Get(cn) = %q, %v", v, ok)
	}
	if got := strings.Join(cl.Params.Values("MEMBER"), "|"); got != "x|y|z" {
		t.Errorf("Values = %q", got)
	}

	set := cl.Params.Set("member", "only")
	if got := strings.Join(set.Values("MEMBER"), "|"); got != "only" {
		t.Errorf("after Set = %q", got)
	}
	if got := strings.Join(cl.Params.Values("MEMBER"), "|"); got != "x|y|z" {
		t.Errorf("Set mutated receiver: %q", got)
	}
	if removed := cl.Params.Remove("CN"); removed.Has("CN") || !cl.Params.Has("CN") {
		t.Errorf("Remove misbehaved")
	}
}

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader("BEGIN:VEVENT\r\nSUMMARY:a\r\n b\r\nBAD\r\nEND:VEVENT\r\n"))

	var names []string
	var errs int
	for {
		cl, err := r.Next()
		if err != nil {
			var se *SyntaxError
			if errors.As(err, &se) {
				errs++
				if se.Line != 4 {
					t.Errorf("syntax error line = %d", se.Line)
				}
				continue
			}
			break
		}
		names = append(names, cl.Name+"="+cl.Value)
	}
	if got := strings.Join(names, ","); got != "BEGIN=VEVENT,SUMMARY=ab,END=VEVENT" {
		t.Errorf("names = %q", got)
	}
	if errs != 1 {
		t.Errorf("errs = %d", errs)
	}
}
