package contentline

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

// Line is one unfolded logical line together with the physical line number
// it started on.
type Line struct {
	Text   string
	Number int
}

// Unfolder turns a byte stream into logical lines, joining continuation
// lines (those starting with a space or tab) onto the previous line.
// Only one physical line is held back as lookahead.
type Unfolder struct {
	r      *bufio.Reader
	number int
	eof    bool

	peeked     []byte
	peekedLine int
	hasPeek    bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func NewUnfolder(r io.Reader) *Unfolder {
	return &Unfolder{r: bufio.NewReader(r)}
}

// UnfoldBytes is a convenience wrapper returning every logical line of src.
func UnfoldBytes(src []byte) ([]Line, error) {
	u := NewUnfolder(bytes.NewReader(src))
	var out []Line
	for {
		l, err := u.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
}

// Next returns the next logical line, or io.EOF when the input is exhausted.
// An invalid UTF-8 sequence is reported as a *SyntaxError for that line only;
// calling Next again continues with the following line.
func (u *Unfolder) Next() (Line, error) {
	for {
		first, num, ok, err := u.physical()
		if err != nil {
			return Line{}, err
		}
		if !ok {
			return Line{}, io.EOF
		}
		if len(first) == 0 {
			continue
		}

		// Bytes are joined before validation so a multi-byte sequence split
		// across a fold point still decodes.
		buf := first
		for {
			next, nextNum, ok, err := u.physical()
			if err != nil {
				return Line{}, err
			}
			if !ok {
				break
			}
			if len(next) == 0 {
				continue
			}
			if next[0] == ' ' || next[0] == '\t' {
				buf = append(buf, next[1:]...)
				continue
			}
			u.peeked, u.peekedLine, u.hasPeek = next, nextNum, true
			break
		}

		if !utf8.Valid(buf) {
			return Line{}, syntaxErr(num, ErrInvalidEncoding)
		}
		return Line{Text: string(buf), Number: num}, nil
	}
}

// physical returns one physical line without its terminator.
func (u *Unfolder) physical() ([]byte, int, bool, error) {
	if u.hasPeek {
		u.hasPeek = false
		return u.peeked, u.peekedLine, true, nil
	}
	if u.eof {
		return nil, 0, false, nil
	}

	b, err := u.r.ReadBytes('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, 0, false, err
		}
		u.eof = true
		if len(b) == 0 {
			return nil, 0, false, nil
		}
	}
	u.number++
	if u.number == 1 {
		b = bytes.TrimPrefix(b, utf8BOM)
	}
	b = bytes.TrimSuffix(b, []byte("\n"))
	b = bytes.TrimSuffix(b, []byte("\r"))
	return b, u.number, true, nil
}
