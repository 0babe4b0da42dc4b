package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"icalkit/internal/config"
	"icalkit/internal/ics"
	"icalkit/internal/interop"
)

// readInput reads a whole file; "-" is stdin.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// loadCalendar parses a single VCALENDAR with the selected engine. Every
// engine ends in the same verification.
func loadCalendar(data []byte, engine string) (*ics.Calendar, error) {
	switch engine {
	case config.EngineNative, "":
		return ics.ParseCalendar(data)
	case config.EngineGolangICal:
		d, err := interop.FromGolangICal(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return d.Build()
	case config.EngineGoICal:
		drafts, err := interop.DecodeGoICal(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if len(drafts) != 1 {
			return nil, fmt.Errorf("%w: found %d calendars", ics.ErrTooManyComponents, len(drafts))
		}
		return drafts[0].Build()
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}

// validateAll collects every component error in data instead of stopping at
// the first one.
func validateAll(data []byte) []error {
	p := ics.NewCalendarParser(bytes.NewReader(data))
	var errs []error
	found := false
	for {
		_, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		found = true
	}
	if !found && len(errs) == 0 {
		errs = append(errs, ics.ErrEmptyInput)
	}
	return errs
}
