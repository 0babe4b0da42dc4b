package ics

import (
	"strings"

	"icalkit/internal/contentline"
)

// render writes BEGIN, the properties, every child in order, and END.
func render(kind string, props []contentline.ContentLine, children []Component) string {
	var b strings.Builder
	b.WriteString(contentline.Fold("BEGIN:" + kind))
	for _, cl := range props {
		b.WriteString(cl.Generate())
	}
	for _, c := range children {
		b.WriteString(c.Generate())
	}
	b.WriteString(contentline.Fold("END:" + kind))
	return b.String()
}

func asComponents[T Component](in []T) []Component {
	out := make([]Component, len(in))
	for i, c := range in {
		out[i] = c
	}
	return out
}
