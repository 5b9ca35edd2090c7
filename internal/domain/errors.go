package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks an unresolved initiative, task or user id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks a benign conflict such as an existing email.
	ErrDuplicate = errors.New("already exists")
)

// PermissionDeniedError is returned when the acting role lacks the scope
// required for an action. Message is user-facing.
type PermissionDeniedError struct {
	Action   PermissionKey
	Required PermissionValue
	Granted  PermissionValue
	Message  string
}

func (e *PermissionDeniedError) Error() string {
	if e.Message != "" {
		return "permission denied: " + e.Message
	}
	return fmt.Sprintf("permission denied: %s requires %s, have %s", e.Action, e.Required, e.Granted)
}

// ValidationError blocks a mutation before any state is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsPermissionDenied(err error) bool {
	var pe *PermissionDeniedError
	return errors.As(err, &pe)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
