package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. The values double as the
// error_type field of an ErrorReport.
type ErrorKind string

const (
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindDecode            ErrorKind = "decode_error"
	KindIO                ErrorKind = "io_failure"
	KindModel             ErrorKind = "model_failure"
	KindLanguage          ErrorKind = "language_detection_error"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}
	ErrDecode            = &Error{Kind: KindDecode}
	ErrIO                = &Error{Kind: KindIO}
	ErrModel             = &Error{Kind: KindModel}
	ErrLanguage          = &Error{Kind: KindLanguage}
)

// Error is a classified failure raised by one pipeline stage.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the operation that failed.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return e.Op
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrDecode) works
// regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or fallback.
func KindOf(err error, fallback ErrorKind) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return fallback
}
