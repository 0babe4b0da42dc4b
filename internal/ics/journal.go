package ics

import (
	"fmt"

	"icalkit/internal/contentline"
)

// JournalDraft is an editable VJOURNAL. Journals have no children.
type JournalDraft struct {
	Properties []contentline.ContentLine
}

func (d *JournalDraft) Kind() string { return KindJournal }

func (d *JournalDraft) AddProperty(cl contentline.ContentLine) {
	d.Properties = append(d.Properties, cl)
}

func (d *JournalDraft) AddChild(c ComponentDraft) error {
	return invalidComponent(c.Kind() + " inside " + KindJournal)
}

func (d *JournalDraft) Build(scope Scope) (*Journal, error) {
	if err := journalRules.check(d.Properties); err != nil {
		return nil, fmt.Errorf("%s: %w", KindJournal, err)
	}
	e, err := buildEntry(d.Properties, scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindJournal, err)
	}
	if _, err := propDTStamp.required(d.Properties, scope); err != nil {
		return nil, fmt.Errorf("%s: %w", KindJournal, err)
	}
	return &Journal{entry: e, properties: cloneLines(d.Properties)}, nil
}

// Journal is a verified VJOURNAL.
type Journal struct {
	entry
	properties
}

func (j *Journal) Kind() string { return KindJournal }

func (j *Journal) Generate() string { return render(KindJournal, j.properties, nil) }

func (j *Journal) ToDraft() *JournalDraft {
	return &JournalDraft{Properties: cloneLines(j.properties)}
}

func (j *Journal) rebuild(props []contentline.ContentLine, scope Scope) (*Journal, error) {
	return (&JournalDraft{Properties: props}).Build(scope)
}
