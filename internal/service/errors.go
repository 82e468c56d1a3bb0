// Package service implements authentication, tracking entry, and water
// statistics business logic on top of repository interfaces.
package service

import (
	"errors"
	"fmt"

	"github.com/atinyakov/HydroPal/internal/validation"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized marks a missing, malformed, or expired token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned by Login for an unknown email and for
	// a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound marks a missing resource. Entries owned by someone else are
	// reported the same way so callers cannot probe for their existence.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("user already exists with this email")
)

// invalid builds an ErrValidation carrying one field failure.
func invalid(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &validation.RequestValidationError{
		Fields: []validation.FieldError{{Field: field, Tag: "invalid", Message: message}},
	})
}

// invalidFields wraps a validator result as ErrValidation, prefixing each
// field path with prefix.
func invalidFields(prefix string, verr *validation.RequestValidationError) error {
	if prefix != "" {
		for i := range verr.Fields {
			verr.Fields[i].Field = prefix + "." + verr.Fields[i].Field
		}
	}
	return fmt.Errorf("%w: %w", ErrValidation, verr)
}
