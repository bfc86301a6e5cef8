package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error") // 400
	ErrUnauthorized = errors.New("unauthorized")     // 401
	ErrForbidden    = errors.New("forbidden")        // 403
	ErrNotFound     = errors.New("not found")        // 404
	ErrConflict     = errors.New("conflict")         // 409
	ErrInternal     = errors.New("internal error")   // 500
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }
func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// NotFoundError names the missing resource category. ID is optional; bulk
// operations report only the category.
type NotFoundError struct {
	Resource string
	ID       any
	Msg      string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.ID != nil:
		return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
	default:
		return e.Resource + " not found"
	}
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsDomain reports whether err already carries a client-facing category.
func IsDomain(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict)
}

// Internal wraps a storage or unexpected failure. Errors that already carry a
// domain category pass through untouched.
func Internal(op string, err error) error {
	if err == nil || IsDomain(err) || errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
