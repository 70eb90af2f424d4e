package service

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authorized")
)

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationError(err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}
