package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrModelNotFound   = fmt.Errorf("%w: model", ErrNotFound)
	ErrFeatureNotFound = fmt.Errorf("%w: feature", ErrNotFound)

	// Input errors
	ErrEmptyEnsemble     = errors.New("ensemble aggregation requires at least one prediction")
	ErrInvalidRecord     = errors.New("invalid clinical record")
	ErrVectorLength      = errors.New("feature vector has wrong length")
	ErrInvalidProbaShape = errors.New("classifier returned a malformed probability vector")

	// Data errors
	ErrSchemaMismatch   = errors.New("dataset does not match the clinical schema")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrInvalidArtifact  = errors.New("invalid model artifact")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidRecord, field, reason)
}

func NewSchemaError(reason string) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, reason)
}

func NewArtifactError(name string, reason string) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidArtifact, name, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrVectorLength)
}
