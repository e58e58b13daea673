// Package apperr defines the domain error taxonomy. Repositories and services
// wrap storage and validation failures into these kinds; the API layer alone
// translates a kind into an HTTP status.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal     Kind = iota // unclassified failure
	KindValidation               // malformed or missing input
	KindUnauthorized             // bad credentials or token
	KindForbidden                // insufficient rights
	KindNotFound                 // missing resource
	KindConflict                 // uniqueness violation
)

// Error carries a kind plus an i18n message key and its arguments. The key is
// resolved to a localized message at the API boundary.
type Error struct {
	Kind Kind
	Key  string
	Args map[string]string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, key string, args map[string]string) *Error {
	return &Error{Kind: kind, Key: key, Args: args}
}

func Validation(key string, args ...map[string]string) *Error {
	return newError(KindValidation, key, firstOrNil(args))
}

func Unauthorized(key string, args ...map[string]string) *Error {
	return newError(KindUnauthorized, key, firstOrNil(args))
}

func Forbidden(key string, args ...map[string]string) *Error {
	return newError(KindForbidden, key, firstOrNil(args))
}

func NotFound(key string, args ...map[string]string) *Error {
	return newError(KindNotFound, key, firstOrNil(args))
}

func Conflict(key string, args ...map[string]string) *Error {
	return newError(KindConflict, key, firstOrNil(args))
}

// Internal wraps an unexpected error. The cause is logged, never surfaced.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Key: "common.internal_error", Err: err}
}

func firstOrNil(args []map[string]string) map[string]string {
	if len(args) > 0 {
		return args[0]
	}
	return nil
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FromError returns err as *Error, wrapping foreign errors as internal.
func FromError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
