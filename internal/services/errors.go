package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error carries one of these so callers can branch with
// errors.Is without matching message text.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrConfiguration   = errors.New("configuration error")
)

// Error is a service failure with a client-facing message.
type Error struct {
	Kind    error
	Message string
	Err     error // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func validationError(message string) *Error { return newError(ErrValidation, message) }
func notFoundError(message string) *Error   { return newError(ErrNotFound, message) }
func conflictError(message string) *Error   { return newError(ErrConflict, message) }

func configurationError(err error) *Error {
	return &Error{Kind: ErrConfiguration, Message: "Server configuration error", Err: err}
}
