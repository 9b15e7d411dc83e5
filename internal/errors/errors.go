package errors

import (
	stderrors "errors"
	"fmt"
)

// As and Is re-export the stdlib helpers so callers importing this
// package do not need a second errors import.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }
func Is(err, target error) bool             { return stderrors.Is(err, target) }
func New(text string) error                 { return stderrors.New(text) }

// DomainError is a business-rule violation with a stable code the API
// layer can map to a response.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// ValidationError names the field that failed validation. Validation
// failures are never retried; the whole update is rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ConflictError signals a state collision: re-deciding a terminal record
// or two concurrent mutations racing on the same row. The caller may
// retry after re-reading state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// IsConflict reports whether err is a ConflictError anywhere in its chain.
func IsConflict(err error) bool {
	var ce *ConflictError
	return As(err, &ce)
}

// IsValidation reports whether err is a ValidationError anywhere in its chain.
func IsValidation(err error) bool {
	var ve *ValidationError
	return As(err, &ve)
}

// RailError is a payment rail failure or timeout. It is recorded on the
// record as a failed terminal state and never retried automatically.
type RailError struct {
	Reason  string
	Timeout bool
}

func (e *RailError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("payment rail timeout: %s", e.Reason)
	}
	return fmt.Sprintf("payment rail error: %s", e.Reason)
}
