// Package apperr defines the business-level failures surfaced by the shift services.
//
// All failures in this package are expected conditions: they are reported to the
// caller, never retried and never fatal.
package apperr

import (
	"errors"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	// KindValidation marks malformed input: end before start, bad rounding policy, etc.
	KindValidation Kind = iota + 1
	// KindConflict marks a request that collides with existing state (already clocked in).
	KindConflict
	// KindNotFound marks a missing shift, employment, or active shift.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Codes for the failures callers may want to tell apart.
const (
	CodeAlreadyClockedIn = "already_clocked_in"
	CodeNoActiveShift    = "no_active_shift"
	CodeInvalidShift     = "invalid_shift"
	CodeInvalidRounding  = "invalid_rounding"
	CodeNotFound         = "not_found"
)

// Error is a structured business failure carrying human-readable messages.
type Error struct {
	Kind     Kind
	Code     string
	Messages []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Messages) == 0 {
		return e.Kind.String()
	}
	return strings.Join(e.Messages, "; ")
}

// Is matches another *Error with the same Kind and Code, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func New(kind Kind, code string, messages ...string) *Error {
	return &Error{Kind: kind, Code: code, Messages: messages}
}

func Validation(code string, messages ...string) *Error {
	return New(KindValidation, code, messages...)
}

func Conflict(code string, messages ...string) *Error {
	return New(KindConflict, code, messages...)
}

func NotFound(code string, messages ...string) *Error {
	return New(KindNotFound, code, messages...)
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsValidation(err error) bool { return hasKind(err, KindValidation) }
func IsConflict(err error) bool   { return hasKind(err, KindConflict) }
func IsNotFound(err error) bool   { return hasKind(err, KindNotFound) }

func hasKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
