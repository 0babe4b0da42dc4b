package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"icalkit/internal/contentline"
	appLog "icalkit/internal/log"
)

// Parser reads top-level components of one kind from a stream and verifies
// each one as it is completed.
type Parser[T any] struct {
	src    *contentline.Reader
	kind   string
	build  func(ComponentDraft) (T, error)
	resync bool
}

func newParser[T any](r io.Reader, kind string, build func(ComponentDraft) (T, error)) *Parser[T] {
	return &Parser[T]{src: contentline.NewReader(r), kind: kind, build: build}
}

// NewCalendarParser yields one *Calendar per VCALENDAR block.
func NewCalendarParser(r io.Reader) *Parser[*Calendar] {
	return newParser(r, KindCalendar, func(d ComponentDraft) (*Calendar, error) {
		return d.(*CalendarDraft).Build()
	})
}

// NewObjectParser yields one *Object per VCALENDAR block. Each block must
// describe a single logical entry: one main instance plus its overrides.
func NewObjectParser(r io.Reader) *Parser[*Object] {
	return newParser(r, KindCalendar, func(d ComponentDraft) (*Object, error) {
		return d.(*CalendarDraft).BuildObject()
	})
}

// NewEventParser reads bare VEVENT blocks, resolving TZIDs against scope.
func NewEventParser(r io.Reader, scope Scope) *Parser[*Event] {
	return newParser(r, KindEvent, func(d ComponentDraft) (*Event, error) {
		return d.(*EventDraft).Build(scope)
	})
}

// NewTimezoneParser reads bare VTIMEZONE blocks.
func NewTimezoneParser(r io.Reader) *Parser[*VTimezone] {
	return newParser(r, KindTimezone, func(d ComponentDraft) (*VTimezone, error) {
		return d.(*TimezoneDraft).Build()
	})
}

// ParseCalendar parses data holding exactly one VCALENDAR.
func ParseCalendar(data []byte) (*Calendar, error) {
	return NewCalendarParser(bytes.NewReader(data)).ExpectOne()
}

// ParseObject parses data holding exactly one single-entry VCALENDAR.
func ParseObject(data []byte) (*Object, error) {
	return NewObjectParser(bytes.NewReader(data)).ExpectOne()
}

// Next returns the next verified component, or io.EOF when the input is
// exhausted. After an error the parser skips ahead to the next
// BEGIN:<kind> line, so callers may keep calling Next to collect the
// remaining components.
func (p *Parser[T]) Next() (T, error) {
	var zero T
	skipped := 0
	for {
		cl, err := p.src.Next()
		if errors.Is(err, io.EOF) {
			p.logSkipped(skipped)
			return zero, io.EOF
		}
		var se *contentline.SyntaxError
		if err != nil && !errors.As(err, &se) {
			return zero, err
		}
		if err != nil {
			if p.resync {
				skipped++
				continue
			}
			p.resync = true
			return zero, err
		}

		if cl.Name != "BEGIN" || !strings.EqualFold(strings.TrimSpace(cl.Value), p.kind) {
			if p.resync {
				skipped++
				continue
			}
			p.resync = true
			return zero, fmt.Errorf("%w: expected BEGIN:%s, got %s", ErrMissingHeader, p.kind, cl.String())
		}
		p.logSkipped(skipped)
		p.resync = false

		d, err := NewDraft(p.kind)
		if err != nil {
			return zero, err
		}
		if err := parseComponent(d, p.src); err != nil {
			p.resync = true
			return zero, err
		}
		return p.build(d)
	}
}

func (p *Parser[T]) logSkipped(n int) {
	if n > 0 {
		appLog.Warn("skipped lines while looking for next component", "kind", p.kind, "lines", n)
	}
}

// ExpectOne returns the only component in the input.
func (p *Parser[T]) ExpectOne() (T, error) {
	var zero T
	v, err := p.Next()
	if errors.Is(err, io.EOF) {
		return zero, ErrEmptyInput
	}
	if err != nil {
		return zero, err
	}
	_, err = p.Next()
	switch {
	case errors.Is(err, io.EOF):
		return v, nil
	case err != nil:
		return zero, fmt.Errorf("%w: %w", ErrTooManyComponents, err)
	default:
		return zero, ErrTooManyComponents
	}
}
