// Package errs defines the error kinds shared by the analytics core and its boundaries.
package errs

import "errors"

var (
	// ErrValidation indicates a missing or malformed request field.
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates a well-formed query that matched no rows.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientData indicates a series too short for the requested model.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrComputation indicates a model fit failure or an undefined statistic.
	ErrComputation = errors.New("computation error")
	// ErrModelNotLoaded indicates the intent classifier was used before its artifact was loaded.
	ErrModelNotLoaded = errors.New("model not loaded")
)

// ValidationError reports which request field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Required builds a ValidationError for a missing field.
func Required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}
