// Package errs defines the error taxonomy shared by every core component.
// Callers branch on Kind, never on error strings.
package errs

import (
	"errors"
	"fmt"
)

type Kind int8

const (
	// KindValidation marks malformed or invariant-violating input.
	KindValidation Kind = iota
	// KindNotFound marks a referenced entity that is absent or not owned
	// by the acting user. Cross-user access reports this kind so that
	// existence is not leaked.
	KindNotFound
	// KindInvalidState marks an illegal state transition.
	KindInvalidState
	// KindConflict marks a concurrent update that could not be applied.
	KindConflict
	// KindExternal marks an upstream provider failure. Retryable.
	KindExternal
	// KindInternal marks an unexpected failure inside an atomic unit.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindExternal:
		return "external"
	default:
		return "internal"
	}
}

// Error carries a kind alongside the message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(format string, args ...any) error {
	return Newf(KindValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return Newf(KindNotFound, format, args...)
}

func InvalidState(format string, args ...any) error {
	return Newf(KindInvalidState, format, args...)
}

// KindOf reports the kind of err, walking the wrap chain. Errors that do
// not carry a kind are treated as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Retryable reports whether the operation may be retried without risk of
// duplicating effects. Only external provider failures qualify.
func Retryable(err error) bool {
	return IsKind(err, KindExternal)
}
