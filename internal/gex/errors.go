package gex

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoZeroCrossing is returned when the profile never changes sign.
	ErrNoZeroCrossing = errors.New("gamma profile has no zero crossing")

	// ErrInvalidParameters is matched by every *ValidationErrors.
	ErrInvalidParameters = errors.New("invalid parameters")
)

// FieldError describes one rejected input.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors collects all validation failures for a single call
type ValidationErrors struct {
	Fields []FieldError
}

// Add records a failure for field.
func (e *ValidationErrors) Add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid parameters:")
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf("\n  - %s: %s", f.Field, f.Message))
	}
	return sb.String()
}

// Is lets callers branch on errors.Is(err, ErrInvalidParameters).
func (e *ValidationErrors) Is(target error) bool {
	return target == ErrInvalidParameters
}
