package flatcsv

import (
	"errors"
	"fmt"

	"github.com/reoring/flatcsv/i18n"
	eng "github.com/reoring/flatcsv/internal/engine"
)

// ErrorKind classifies a ValidationError.
type ErrorKind string

const (
	EmptyInput    ErrorKind = i18n.CodeEmptyInput
	InvalidSyntax ErrorKind = i18n.CodeInvalidSyntax
	NoDataFound   ErrorKind = i18n.CodeNoDataFound
)

// Sentinels for errors.Is; they match any ValidationError of the same kind.
var (
	ErrEmptyInput    = &ValidationError{Kind: EmptyInput}
	ErrInvalidSyntax = &ValidationError{Kind: InvalidSyntax}
	ErrNoDataFound   = &ValidationError{Kind: NoDataFound}
)

// ValidationError reports why an input could not be converted.
type ValidationError struct {
	Kind    ErrorKind
	Message string // human-readable, localized
	Path    string // JSON Pointer of the offending value when known
	Offset  int64  // byte offset in the input (-1 when unknown)
	Cause   error  // underlying parser error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Is matches kind sentinels such as ErrInvalidSyntax.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Cause == nil
}

// AsValidationError extracts a ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func newValidationError(kind ErrorKind, opt Options, detail string) *ValidationError {
	data := map[string]string(nil)
	if detail != "" {
		data = map[string]string{"detail": detail}
	}
	var msg string
	if opt.Lang != "" {
		msg = i18n.For(opt.Lang).Message(string(kind), data)
	} else {
		msg = i18n.T(string(kind), data)
	}
	return &ValidationError{Kind: kind, Message: msg, Offset: -1}
}

// syntaxError maps tokenizer and enforcement failures to InvalidSyntax.
func syntaxError(err error, opt Options) *ValidationError {
	var (
		se *eng.SyntaxError
		vi *eng.Violation
	)
	switch {
	case errors.As(err, &vi):
		ve := newValidationError(InvalidSyntax, opt, vi.Error())
		ve.Path, ve.Offset, ve.Cause = vi.Path, vi.Offset, err
		return ve
	case errors.As(err, &se):
		ve := newValidationError(InvalidSyntax, opt, se.Msg)
		ve.Offset, ve.Cause = se.Offset, err
		return ve
	default:
		ve := newValidationError(InvalidSyntax, opt, fmt.Sprint(err))
		ve.Cause = err
		return ve
	}
}
