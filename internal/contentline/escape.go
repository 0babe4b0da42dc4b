package contentline

import (
	"strings"
)

// EscapeParam prepares a parameter value for output. Backslash, semicolon,
// comma and colon are escaped unless the value is wrapped in double quotes.
// Newlines always become \n and inner quotes become \". Inside quotes a
// backslash is doubled only where it would read as one of those escapes.
func EscapeParam(v string) string {
	if isQuoted(v) {
		return `"` + escapeQuoted(v[1:len(v)-1]) + `"`
	}

	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '"':
			b.WriteString(`\"`)
		case '\\', ';', ',', ':':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeQuoted(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			if i+1 == len(s) || strings.IndexByte("nN\"\\\n", s[i+1]) >= 0 {
				b.WriteString(`\\`)
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeParam reverses EscapeParam.
func UnescapeParam(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	if isQuoted(s) {
		return `"` + unescapeQuoted(s[1:len(s)-1]) + `"`
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// unescapeQuoted decodes \\, \" and \n; any other backslash is literal.
func unescapeQuoted(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\', '"':
				b.WriteByte(s[i+1])
				i++
				continue
			case 'n', 'N':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var (
	textEscaper   = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, "\r\n", `\n`, "\n", `\n`)
	textUnescaper = strings.NewReplacer(`\\`, `\`, `\;`, `;`, `\,`, `,`, `\n`, "\n", `\N`, "\n")
)

// EscapeText escapes a TEXT property value.
func EscapeText(s string) string { return textEscaper.Replace(s) }

// UnescapeText decodes a TEXT property value.
func UnescapeText(s string) string { return textUnescaper.Replace(s) }
