package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers map these onto HTTP
// statuses; repositories and services wrap them with context via %w so
// errors.Is still matches.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state for this operation")
	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError reports a missing or invalid input field to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func invalidField(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
