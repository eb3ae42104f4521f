package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrVersionConflict is returned by conditional updates when the stored
	// document changed since it was read.
	ErrVersionConflict = errors.New("version conflict")
)
