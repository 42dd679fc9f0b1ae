package service

import "errors"

var (
	// ErrNotFound marks a missing record; handlers map it to 404.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an action the caller may not perform; 403.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries a user-facing reason for a rejected write; 400.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return ValidationError{Reason: reason}
}
