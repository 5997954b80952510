package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is the generic lookup-miss sentinel. Repositories return
// it (possibly wrapped) when a document does not exist.
var ErrNotFound = errors.New("resource not found")

// AppError is an operational error safe to expose to clients. Anything
// that is not an AppError is masked behind a generic message outside
// development mode.
type AppError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports a client input or business-rule violation (400).
func NewValidationError(field, message string) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Field:      field,
	}
}

// NewNotFoundError reports a missing resource (404).
func NewNotFoundError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusNotFound,
		Message:    message,
		Err:        ErrNotFound,
	}
}

// NewUnauthorizedError reports a failed authentication (401).
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusUnauthorized,
		Message:    message,
	}
}

// NewForbiddenError reports a role/permission failure (403).
func NewForbiddenError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusForbidden,
		Message:    message,
	}
}

// Wrap turns an arbitrary error into a 500 AppError, preserving the
// cause for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Err:        err,
	}
}

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
