package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError and ValidationErrors.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation targets a record id that does
	// not exist in its collection.
	ErrNotFound = errors.New("record not found")

	// ErrCorruptCollection is returned when a write would replace a collection
	// whose stored payload could not be decoded.
	ErrCorruptCollection = errors.New("collection payload is corrupt")
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors aggregates the field failures of one record.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// orNil returns nil when no field failed, so callers can return it directly.
func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// NotFoundError names the collection and id of a missing record.
type NotFoundError struct {
	Collection Collection
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s record %q not found", strings.TrimSuffix(string(e.Collection), "s"), e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Outcome reports whether a reference-based operation applied its change.
// A reference to a missing record is not an error: the operation leaves the
// state untouched and reports OutcomeSoftMiss.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeSoftMiss
)

func (o Outcome) String() string {
	if o == OutcomeSoftMiss {
		return "soft-miss"
	}
	return "applied"
}
