package application

import (
	"errors"

	"github.com/example/workspace-booking/internal/persistence"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a uniqueness rule rejects a create.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrContention is returned when a commit lost its race repeatedly and
	// the bounded retries were exhausted. Transient; the caller may retry.
	ErrContention = errors.New("application: storage contention")
)

// ValidationError captures field level issues with malformed input that
// callers can surface to users. Domain-rule rejections travel separately as
// booking.Rejection values; this type covers unparseable shapes only.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// isNotFound reports whether the error is either layer's not-found sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
