package domain

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates failures across every component. It implements
// error itself so callers can match with errors.Is(err, domain.Network).
type ErrorKind string

const (
	// Validation is malformed caller input, reported before any mutation.
	Validation ErrorKind = "validation"

	// Storage is a secure-storage read/write failure.
	Storage ErrorKind = "storage"

	// Key means a key operation lacks its precondition, such as publishing
	// before any identity exists.
	Key ErrorKind = "key"

	// Network is a directory transport failure, distinct from a
	// definitively absent result.
	Network ErrorKind = "network"

	// Initialization aggregates a failed Initialize; the lifecycle rolls
	// back but persisted credentials stay.
	Initialization ErrorKind = "initialization"

	// Security is detected tampering or an invariant violation, fatal to
	// the current operation.
	Security ErrorKind = "security"
)

// Error satisfies the error interface so kinds work as errors.Is targets.
func (k ErrorKind) Error() string { return string(k) + " error" }

// Error is the single failure type all components propagate: a kind, a
// human-readable message, an optional machine code and structured details,
// and the wrapped cause.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Err }

// Is matches either an ErrorKind target or another *Error with the same kind.
func (e *Error) Is(target error) bool {
	if k, ok := target.(ErrorKind); ok {
		return e.Kind == k
	}
	if other, ok := target.(*Error); ok {
		return e.Kind == other.Kind
	}
	return false
}

// WithCode attaches a machine-readable code and returns the error.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithDetail attaches one structured detail and returns the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// E builds an Error of the given kind.
func E(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Ef builds an Error with a formatted message.
func Ef(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around a cause. Wrapping an Error
// of the same kind just adds context; the kind is preserved either way so
// lower layers never mask what happened.
func Wrap(kind ErrorKind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind of err, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
