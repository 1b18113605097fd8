// Package apperr defines the error kinds returned across store and service boundaries.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindDuplicate
	KindValidation
	KindAuthInvalid
	KindInactive
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindValidation:
		return "validation"
	case KindAuthInvalid:
		return "auth_invalid"
	case KindInactive:
		return "inactive"
	default:
		return "internal"
	}
}

// Error is a classified error. Field is set for validation failures.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind, so
// errors.Is(err, ErrNotFound) holds for every not-found error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound    = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDuplicate   = &Error{Kind: KindDuplicate, Message: "already exists"}
	ErrValidation  = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrAuthInvalid = &Error{Kind: KindAuthInvalid, Message: "could not validate credentials"}
	ErrInactive    = &Error{Kind: KindInactive, Message: "inactive user"}
	ErrInternal    = &Error{Kind: KindInternal, Message: "internal error"}
)

func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Duplicate(message string) error {
	return &Error{Kind: KindDuplicate, Message: message}
}

func AuthInvalid(cause error) error {
	return &Error{Kind: KindAuthInvalid, Message: ErrAuthInvalid.Message, Err: cause}
}

// Internal wraps an unexpected failure. The message stays generic so callers
// cannot confuse a system fault with a domain outcome.
func Internal(op string, cause error) error {
	return &Error{Kind: KindInternal, Message: op, Err: cause}
}

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsDomain reports whether err is a classified, non-internal error.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind != KindInternal
}
