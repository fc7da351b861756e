// Package apperr classifies failures of the listing endpoint into the kinds
// exposed to clients.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the client-facing error code
type Kind string

const (
	KindInvalidParams Kind = "INVALID_PARAMS"
	KindDatabase      Kind = "DATABASE_ERROR"
	KindInternal      Kind = "INTERNAL_ERROR"
)

// Error carries a kind, a user-safe message and optional diagnostic details
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FieldError describes one rejected query parameter
type FieldError struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Invalid builds an INVALID_PARAMS error from field failures
func Invalid(fields ...FieldError) *Error {
	msg := "Invalid query parameters"
	if len(fields) == 1 {
		msg = fmt.Sprintf("Invalid query parameter %s: %s", fields[0].Field, fields[0].Reason)
	}
	return &Error{Kind: KindInvalidParams, Message: msg, Details: fields}
}

// Database wraps a store failure
func Database(message string, err error) *Error {
	return &Error{Kind: KindDatabase, Message: message, Err: err}
}

// Internal wraps an unexpected failure
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "An unexpected error occurred", Err: err}
}

// KindOf returns the kind of err, or KindInternal when it is unclassified
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
