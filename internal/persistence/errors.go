package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConstraintViolation is returned when a write names a field the
	// store does not recognise or violates a schema constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
