package contentline

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEncoding     = errors.New("invalid utf-8 encoding")
	ErrMissingName         = errors.New("missing property name")
	ErrMissingClosingQuote = errors.New("missing closing quote")
	ErrMissingDelimiter    = errors.New("missing delimiter '='")
	ErrMissingParamKey     = errors.New("missing parameter key")
	ErrMissingValue        = errors.New("missing value delimiter ':'")
	ErrMissingContentAfter = errors.New("missing content after delimiter")
)

// SyntaxError reports a malformed logical line.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func syntaxErr(line int, err error) error {
	return &SyntaxError{Line: line, Err: err}
}
