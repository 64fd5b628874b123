package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrCorruptConcept = errors.New("corrupt concept")
	ErrNotInitialized = errors.New("database not initialized")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConceptError ties a failure to the concept it concerns
type ConceptError struct {
	ID  string
	Err error
}

func (e *ConceptError) Error() string {
	return fmt.Sprintf("concept %s: %v", e.ID, e.Err)
}

func (e *ConceptError) Unwrap() error {
	return e.Err
}
