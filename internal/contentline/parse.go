package contentline

import (
	"io"
	"strings"
)

// Parse splits one logical line into name, parameters and value.
func Parse(line Line) (ContentLine, error) {
	s := line.Text

	i := strings.IndexAny(s, ";:")
	switch {
	case i == 0:
		return ContentLine{}, syntaxErr(line.Number, ErrMissingName)
	case i < 0:
		return ContentLine{}, syntaxErr(line.Number, ErrMissingValue)
	}

	out := ContentLine{Name: strings.ToUpper(s[:i])}
	rest := s[i:]

	for strings.HasPrefix(rest, ";") {
		rest = rest[1:]
		if rest == "" {
			return ContentLine{}, syntaxErr(line.Number, ErrMissingContentAfter)
		}

		eq := strings.IndexByte(rest, '=')
		if eq < 0 || strings.ContainsAny(rest[:eq], ";:") {
			return ContentLine{}, syntaxErr(line.Number, ErrMissingDelimiter)
		}
		if eq == 0 {
			return ContentLine{}, syntaxErr(line.Number, ErrMissingParamKey)
		}
		prm := Param{Name: strings.ToUpper(rest[:eq])}
		rest = rest[eq+1:]

		for {
			v, remaining, err := scanParamValue(rest)
			if err != nil {
				return ContentLine{}, syntaxErr(line.Number, err)
			}
			prm.Values = append(prm.Values, v)
			rest = remaining
			if !strings.HasPrefix(rest, ",") {
				break
			}
			rest = rest[1:]
			if rest == "" {
				return ContentLine{}, syntaxErr(line.Number, ErrMissingContentAfter)
			}
		}
		out.Params = append(out.Params, prm)
	}

	if !strings.HasPrefix(rest, ":") {
		return ContentLine{}, syntaxErr(line.Number, ErrMissingValue)
	}
	out.Value = rest[1:]
	return out, nil
}

// scanParamValue reads one parameter value from the front of s and unescapes
// it. Quoted values keep their surrounding quotes.
func scanParamValue(s string) (string, string, error) {
	if strings.HasPrefix(s, `"`) {
		for j := 1; j < len(s); j++ {
			switch s[j] {
			case '\\':
				j++
			case '"':
				return UnescapeParam(s[:j+1]), s[j+1:], nil
			}
		}
		return "", "", ErrMissingClosingQuote
	}

	for j := 0; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case ';', ':', ',':
			return UnescapeParam(s[:j]), s[j:], nil
		}
	}
	return UnescapeParam(s), "", nil
}

// Reader yields content lines from a byte stream.
type Reader struct {
	u *Unfolder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{u: NewUnfolder(r)}
}

// Next returns the next content line, io.EOF at the end of input, or a
// *SyntaxError for a malformed line. A syntax error does not end the stream.
func (r *Reader) Next() (ContentLine, error) {
	line, err := r.u.Next()
	if err != nil {
		return ContentLine{}, err
	}
	return Parse(line)
}
