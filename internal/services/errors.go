package services

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")

	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	// ErrForbidden is returned when a comment is changed by someone other than
	// its author.
	ErrForbidden = errors.New("forbidden")

	// ErrConcurrentUpdate is returned when a post kept changing underneath a
	// mutation for every allowed retry.
	ErrConcurrentUpdate = errors.New("concurrent update conflict")

	ErrValidation = errors.New("validation failed")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}
