package errors

import (
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrDuplicateSerial    = fmt.Errorf("duplicate serial number")
	ErrDuplicateUsername  = fmt.Errorf("duplicate username")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrForbidden          = fmt.Errorf("forbidden")
	ErrUnauthenticated    = fmt.Errorf("authentication required")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrSignupClosed       = fmt.Errorf("signup is closed")
	ErrReferenceInUse     = fmt.Errorf("reference is in use")
	ErrSubscriptionTaken  = fmt.Errorf("endpoint belongs to another user")
)

// ValidationError reports rejected input, keyed by the offending field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field, keeping the first message per field.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	if _, exists := v.Fields[field]; !exists {
		v.Fields[field] = message
	}
}

// Empty reports whether no field errors were recorded.
func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
