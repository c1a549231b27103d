// Package common defines sentinel errors and small helpers shared by the
// server layers of recipeshare. Callers should use errors.Is to match the
// sentinel values and errors.As to reach the user-facing *Error.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors. Each maps to one HTTP status at the edge.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorForbidden     = errors.New("forbidden")
	ErrorValidation    = errors.New("validation error")
	ErrorUploadFailed  = errors.New("upload failed")
	ErrorPersistence   = errors.New("persistence failed")
	ErrorConfiguration = errors.New("configuration error")
	ErrorRateLimited   = errors.New("rate limited")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error carries a user-facing message next to the sentinel kind that decides
// the response status. Message is what the caller sees; the store error that
// caused it never leaves the process except through Message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds an *Error of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the user-facing text of err, or fallback when err does not
// carry one.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
