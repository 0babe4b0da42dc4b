package contentline

import (
	"strings"
)

const (
	firstLineChars = 75
	contLineChars  = 74
)

// String renders the line unfolded and without a terminator.
func (c ContentLine) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, prm := range c.Params {
		b.WriteByte(';')
		b.WriteString(prm.Name)
		b.WriteByte('=')
		for i, v := range prm.Values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EscapeParam(v))
		}
	}
	b.WriteByte(':')
	b.WriteString(c.Value)
	return b.String()
}

// Generate renders the line folded and CRLF terminated.
func (c ContentLine) Generate() string {
	return Fold(c.String())
}

// Fold splits a logical line into physical lines of at most 75 characters,
// continuation lines carrying a single leading space. Splits happen on rune
// boundaries. The result always ends with CRLF.
func Fold(line string) string {
	var b strings.Builder
	b.Grow(len(line) + len(line)/contLineChars*3 + 2)

	count, limit := 0, firstLineChars
	for _, r := range line {
		if count == limit {
			b.WriteString("\r\n ")
			count, limit = 0, contLineChars
		}
		b.WriteRune(r)
		count++
	}
	b.WriteString("\r\n")
	return b.String()
}
