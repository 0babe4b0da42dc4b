package interop

import (
	"fmt"
	"io"
	"strings"

	ical "github.com/arran4/golang-ical"

	"icalkit/internal/contentline"
	"icalkit/internal/ics"
	appLog "icalkit/internal/log"
)

// golang-ical types these as TEXT but they carry structured values; their
// separators must not be escaped on the way back.
var structuredText = map[string]bool{
	"EXRULE":         true,
	"CATEGORIES":     true,
	"RESOURCES":      true,
	"REQUEST-STATUS": true,
}

// FromGolangICal reads one calendar with github.com/arran4/golang-ical and
// returns it as an unverified draft. Call Build on the result to run the
// icalkit checks.
func FromGolangICal(r io.Reader) (*ics.CalendarDraft, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		appLog.Error("golang-ical parse failed", err)
		return nil, err
	}
	if cal == nil || (len(cal.CalendarProperties) == 0 && len(cal.Components) == 0) {
		return nil, ErrNoCalendar
	}

	d := &ics.CalendarDraft{}
	for _, p := range cal.CalendarProperties {
		d.AddProperty(golangLine(p.BaseProperty))
	}
	for _, comp := range cal.Components {
		if err := addGolangComponent(d, comp); err != nil {
			return nil, err
		}
	}

	appLog.Debug("golang-ical import completed", "components", len(cal.Components))
	return d, nil
}

func addGolangComponent(parent ics.ComponentDraft, comp ical.Component) error {
	child, err := ics.NewDraft(golangKind(comp))
	if err != nil {
		return err
	}
	for _, p := range comp.UnknownPropertiesIANAProperties() {
		child.AddProperty(golangLine(p.BaseProperty))
	}
	for _, sub := range comp.SubComponents() {
		if err := addGolangComponent(child, sub); err != nil {
			return err
		}
	}
	if err := parent.AddChild(child); err != nil {
		return fmt.Errorf("%s: %w", parent.Kind(), err)
	}
	return nil
}

func golangKind(comp ical.Component) string {
	switch c := comp.(type) {
	case *ical.VEvent:
		return string(ical.ComponentVEvent)
	case *ical.VTodo:
		return string(ical.ComponentVTodo)
	case *ical.VJournal:
		return string(ical.ComponentVJournal)
	case *ical.VBusy:
		return string(ical.ComponentVFreeBusy)
	case *ical.VTimezone:
		return string(ical.ComponentVTimezone)
	case *ical.VAlarm:
		return string(ical.ComponentVAlarm)
	case *ical.Standard:
		return string(ical.ComponentStandard)
	case *ical.Daylight:
		return string(ical.ComponentDaylight)
	case *ical.GeneralComponent:
		return strings.ToUpper(c.Token)
	default:
		return fmt.Sprintf("%T", comp)
	}
}

// golangLine converts a golang-ical property. TEXT values arrive unescaped
// and are escaped again with the library's own escaper.
func golangLine(p ical.BaseProperty) contentline.ContentLine {
	value := p.Value
	if p.GetValueType() == ical.ValueDataTypeText && !structuredText[strings.ToUpper(p.IANAToken)] {
		value = ical.ToText(value)
	}
	return paramLine(p.IANAToken, p.ICalParameters, value)
}
