package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStage is returned when a stage is not part of the known stage set.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrInvalidOffsetKind is returned when a reminder offset kind is unknown.
	ErrInvalidOffsetKind = errors.New("invalid offset kind")
)
