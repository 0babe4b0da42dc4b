package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"icalkit/internal/caltime"
	"icalkit/internal/contentline"
	appLog "icalkit/internal/log"
)

const (
	DefaultMaxInstances = 2048

	// iterationFactor bounds how many candidate instants may be examined
	// per emitted instance, so heavy exclusions still terminate.
	iterationFactor = 64
)

// ExpandOptions controls recurrence expansion. Start and End are inclusive
// bounds on generated instants; nil means unbounded.
type ExpandOptions struct {
	Start        *time.Time
	End          *time.Time
	MaxInstances int
}

// ExpandResult holds the expanded object. Object is nil when no instance
// falls inside the window.
type ExpandResult struct {
	Object    *Object
	Truncated bool
}

// Expand turns a recurring object into its concrete instances: the first
// one becomes Main, the rest Overrides, each carrying its RECURRENCE-ID.
// Date-times are normalized to UTC or floating form.
func (o *Object) Expand(opts ExpandOptions) (ExpandResult, error) {
	var result ExpandResult
	if opts.Start != nil && opts.End != nil && opts.End.Before(*opts.Start) {
		return result, errors.New("expand: window end is before window start")
	}
	if opts.MaxInstances <= 0 {
		opts.MaxInstances = DefaultMaxInstances
	}

	scope := Scope{Timezones: o.Timezones(), HasMethod: hasProperty(o.props, "METHOD")}
	data, truncated, err := o.data.expand(opts, scope)
	if err != nil {
		return result, err
	}
	result.Truncated = truncated
	if truncated {
		appLog.Error("expand: truncated instances due to cap",
			errors.New("max instances reached"),
			"uid", o.UID(),
			"cap", opts.MaxInstances,
		)
	}
	if data == nil {
		return result, nil
	}
	result.Object = newObject(cloneLines(o.props), referencedTimezones(o.vtimezones, data.components()), data)
	return result, nil
}

func (d *EventData) expand(opts ExpandOptions, scope Scope) (ObjectData, bool, error) {
	out, truncated, err := expandInstances(d.main, d.overrides, propDTEnd, opts, scope)
	if err != nil || len(out) == 0 {
		return nil, truncated, err
	}
	return &EventData{main: out[0], overrides: out[1:]}, truncated, nil
}

func (d *TodoData) expand(opts ExpandOptions, scope Scope) (ObjectData, bool, error) {
	out, truncated, err := expandInstances(d.main, d.overrides, propDue, opts, scope)
	if err != nil || len(out) == 0 {
		return nil, truncated, err
	}
	return &TodoData{main: out[0], overrides: out[1:]}, truncated, nil
}

func (d *JournalData) expand(opts ExpandOptions, scope Scope) (ObjectData, bool, error) {
	out, truncated, err := expandInstances(d.main, d.overrides, propDef[caltime.DateOrDateTime]{}, opts, scope)
	if err != nil || len(out) == 0 {
		return nil, truncated, err
	}
	return &JournalData{main: out[0], overrides: out[1:]}, truncated, nil
}

// instance is an entry that can be re-verified from a new property list.
type instance[T any] interface {
	entryComponent
	rebuild(props []contentline.ContentLine, scope Scope) (T, error)
}

// expandInstances walks the recurrence set of main and emits one instance
// per generated instant. Overrides whose RECURRENCE-ID matches an instant
// replace it; a THISANDFUTURE override also becomes the template for every
// later synthesized instance. endDef names the end property (DTEND or DUE)
// and has an empty name for journals.
func expandInstances[T instance[T]](main T, overrides []T, endDef propDef[caltime.DateOrDateTime], opts ExpandOptions, scope Scope) ([]T, bool, error) {
	normMain, err := normalizeInstance(main, scope)
	if err != nil {
		return nil, false, err
	}
	normOverrides := make([]T, len(overrides))
	byRecurID := make(map[string]int, len(overrides))
	for i, ov := range overrides {
		if normOverrides[i], err = normalizeInstance(ov, scope); err != nil {
			return nil, false, err
		}
		rid, _ := ov.RecurrenceID()
		byRecurID[rid.Value.UTCOrLocal().Format()] = i
	}

	if !main.HasRecurrence() {
		return append([]T{normMain}, normOverrides...), false, nil
	}

	start, _ := main.Start()
	set, err := newRecurrenceSet(start, main.Recurrence())
	if err != nil {
		return nil, false, err
	}

	tmpl, err := newTemplate(normMain, endDef)
	if err != nil {
		return nil, false, err
	}

	var (
		out       []T
		truncated bool
		steps     int
	)
	for {
		inst, ok := set.include()
		if !ok {
			break
		}
		if opts.End != nil && inst.After(*opts.End) {
			break
		}
		// Instants before the window only advance the template; the step
		// bound applies to candidates inside it.
		inWindow := opts.Start == nil || !inst.Before(*opts.Start)
		if inWindow {
			if steps++; steps > opts.MaxInstances*iterationFactor {
				truncated = true
				break
			}
		}
		if set.excluded(inst) {
			continue
		}

		candidate := start.WithTime(inst).UTCOrLocal()
		i, overridden := byRecurID[candidate.Format()]
		if overridden {
			if rid, _ := overrides[i].RecurrenceID(); rid.Range == RangeThisAndFuture {
				if tmpl, err = newTemplate(normOverrides[i], endDef); err != nil {
					return nil, false, err
				}
			}
		}
		if !inWindow {
			continue
		}
		if len(out) >= opts.MaxInstances {
			truncated = true
			break
		}

		if overridden {
			out = append(out, normOverrides[i])
			continue
		}
		synth, err := tmpl.source.rebuild(tmpl.instantiate(candidate), scope)
		if err != nil {
			return nil, false, err
		}
		out = append(out, synth)
	}
	return out, truncated, nil
}

func normalizeInstance[T instance[T]](it T, scope Scope) (T, error) {
	props, err := normalizeProperties(it.Properties(), scope)
	if err != nil {
		var zero T
		return zero, err
	}
	return it.rebuild(props, scope)
}

// recurrenceSet yields the instants of one recurrence bundle in ascending
// order. Every rule runs in the zone of the anchor.
type recurrenceSet struct {
	include rrule.Next
	exclude rrule.Next
	ex      time.Time
	exOK    bool
}

// newRecurrenceSet merges RRULEs, RDATEs and start itself into the included
// instants, and EXRULEs with EXDATEs into the excluded ones.
func newRecurrenceSet(start caltime.DateOrDateTime, rec Recurrence) (*recurrenceSet, error) {
	var dates, exdates rrule.Set
	dates.RDate(start.Time())
	for _, rd := range rec.RDates {
		dates.RDate(rd.Start().Time())
	}
	for _, ex := range rec.ExDates {
		exdates.RDate(ex.Time())
	}

	include := []rrule.Next{dates.Iterator()}
	for _, opt := range rec.RRules {
		r, err := rrule.NewRRule(opt)
		if err != nil {
			return nil, errors.Join(ErrInvalidRule, err)
		}
		include = append(include, r.Iterator())
	}
	exclude := []rrule.Next{exdates.Iterator()}
	for _, opt := range rec.ExRules {
		r, err := rrule.NewRRule(opt)
		if err != nil {
			return nil, errors.Join(ErrInvalidRule, err)
		}
		exclude = append(exclude, r.Iterator())
	}

	s := &recurrenceSet{include: mergeAscending(include), exclude: mergeAscending(exclude)}
	s.ex, s.exOK = s.exclude()
	return s, nil
}

// excluded reports whether dt is removed from the set. Calls must come with
// ascending dt.
func (s *recurrenceSet) excluded(dt time.Time) bool {
	for s.exOK && s.ex.Before(dt) {
		s.ex, s.exOK = s.exclude()
	}
	return s.exOK && s.ex.Equal(dt)
}

// mergeAscending merges ascending sequences into one, dropping duplicates.
func mergeAscending(gens []rrule.Next) rrule.Next {
	heads := make([]time.Time, len(gens))
	live := make([]bool, len(gens))
	for i, g := range gens {
		heads[i], live[i] = g()
	}
	var (
		last    time.Time
		started bool
	)
	return func() (time.Time, bool) {
		for {
			lowest := -1
			for i := range gens {
				if live[i] && (lowest < 0 || heads[i].Before(heads[lowest])) {
					lowest = i
				}
			}
			if lowest < 0 {
				return time.Time{}, false
			}
			dt := heads[lowest]
			heads[lowest], live[lowest] = gens[lowest]()
			if started && dt.Equal(last) {
				continue
			}
			started, last = true, dt
			return dt, true
		}
	}
}

// template is the instance synthesized occurrences are copied from.
type template[T instance[T]] struct {
	source  T
	props   []contentline.ContentLine
	dtstart contentline.ContentLine
	endLine contentline.ContentLine
	hasEnd  bool
	length  time.Duration
	isDate  bool
}

// newTemplate prepares a normalized instance for copying.
func newTemplate[T instance[T]](src T, endDef propDef[caltime.DateOrDateTime]) (*template[T], error) {
	t := &template[T]{source: src}
	start, _ := src.Start()
	t.isDate = start.IsDate()
	for _, cl := range src.Properties() {
		switch cl.Name {
		case "RRULE", "RDATE", "EXRULE", "EXDATE", "RECURRENCE-ID":
		case "DTSTART":
			t.dtstart = cl
		case endDef.name:
			t.endLine = cl
			t.hasEnd = true
		default:
			t.props = append(t.props, cl)
		}
	}
	if t.hasEnd {
		end, err := endDef.decode(t.endLine, Scope{})
		if err != nil {
			return nil, err
		}
		t.length = end.Sub(start)
	}
	return t, nil
}

// instantiate returns the property list of the instance at candidate: the
// template's properties with DTSTART, the end and RECURRENCE-ID moved.
func (t *template[T]) instantiate(candidate caltime.DateOrDateTime) []contentline.ContentLine {
	props := make([]contentline.ContentLine, 0, len(t.props)+3)

	dtstart := t.dtstart.Clone()
	dtstart.Value = candidate.Format()
	props = append(props, dtstart)

	if t.hasEnd {
		end := t.endLine.Clone()
		end.Value = candidate.Add(t.length).Format()
		props = append(props, end)
	}

	rid := contentline.New("RECURRENCE-ID", candidate.Format())
	if t.isDate {
		rid.Params = rid.Params.Set("VALUE", caltime.ValueDate)
	}
	props = append(props, rid)

	return append(props, cloneLines(t.props)...)
}
