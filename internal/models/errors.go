package models

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrBookNotFound      = errors.New("book not found")
	ErrNotOwned          = errors.New("book not purchased")
	ErrAlreadyOwned      = errors.New("book already purchased")
	ErrProofRequired     = errors.New("payment proof required")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrNoCheckout        = errors.New("no checkout in progress")
	ErrInvalidRole       = errors.New("invalid role")
	ErrRoleRequired      = errors.New("role not selected")
)

// ValidationError reports malformed or missing input at the point of entry
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrValidation
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
