package ics

import (
	"time"

	"icalkit/internal/caltime"
	"icalkit/internal/model"
)

// Occurrences flattens an object, usually the result of Expand, into one
// occurrence per instance. Times are converted into displayLoc; floating
// values keep their wall clock. A nil displayLoc means time.Local.
func Occurrences(obj *Object, displayLoc *time.Location) []model.Occurrence {
	if obj == nil {
		return nil
	}
	if displayLoc == nil {
		displayLoc = time.Local
	}
	var out []model.Occurrence
	for _, c := range obj.data.components() {
		var (
			it  entryComponent
			end caltime.DateOrDateTime
			ok  bool
		)
		switch v := c.(type) {
		case *Event:
			it = v
			end, ok = v.End()
		case *Todo:
			it = v
			end, ok = v.Due()
		case *Journal:
			it = v
		}
		start, hasStart := it.Start()
		if !hasStart {
			continue
		}
		if !ok {
			end = start
		}
		out = append(out, makeOccurrence(it, start, end, displayLoc))
	}
	return out
}

// makeOccurrence converts one instance with its start/end into a
// model.Occurrence normalized into displayLoc.
func makeOccurrence(it entryComponent, start, end caltime.DateOrDateTime, displayLoc *time.Location) model.Occurrence {
	props := properties(it.Properties())
	occ := model.Occurrence{
		Kind:        it.Kind(),
		UID:         it.UID(),
		Summary:     props.Text("SUMMARY"),
		Description: props.Text("DESCRIPTION"),
		Location:    props.Text("LOCATION"),
		AllDay:      start.IsDate(),
		Start:       inDisplay(start, displayLoc),
		End:         inDisplay(end, displayLoc),
	}

	// InstanceKey: the RECURRENCE-ID as a stable per-instance key.
	if rid, ok := it.RecurrenceID(); ok {
		occ.InstanceKey = rid.Value.Format()
		occ.Recurring = true
	} else {
		occ.InstanceKey = start.Format()
	}
	return occ
}

func inDisplay(v caltime.DateOrDateTime, displayLoc *time.Location) time.Time {
	t := v.Time()
	if v.IsDate() || v.IsFloating() {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), displayLoc)
	}
	return t.In(displayLoc)
}

// FilterWindow keeps the occurrences that intersect [from, to]. Expansion
// never filters entries that do not recur, so callers showing a window
// apply this afterwards.
func FilterWindow(occs []model.Occurrence, from, to time.Time) []model.Occurrence {
	out := make([]model.Occurrence, 0, len(occs))
	for _, occ := range occs {
		if timeRangesOverlap(occ.Start, occ.End, from, to) {
			out = append(out, occ)
		}
	}
	return out
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
