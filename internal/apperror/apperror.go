// Package apperror defines the domain error taxonomy shared by the service,
// repository and handler layers.
//
// Every error that should reach the client with a meaningful status is an
// *AppError wrapping one of the sentinels below. Handlers map the sentinel to
// an HTTP status with errors.Is; anything else is reported as a 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("store unavailable")
	ErrMediaHost    = errors.New("media host error")
	ErrRateLimited  = errors.New("rate limited")
)

// AppError is the error type every layer returns for failures a client can
// act on. The handler layer maps Err to an HTTP status.
type AppError struct {
	Err     error  // sentinel, matched with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	cause   error  // underlying driver/host error, never shown to clients
}

// Error includes the cause, so it is for logs only.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// NotFound creates a 404 error for resource with the given id.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed creates a 400 error naming the offending field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict creates a 409 error for a unique value already in use.
func Conflict(resource, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, value),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when credentials are missing or wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Unavailable marks a failure to reach the backing store. The cause is kept
// for logs; clients only see the message.
func Unavailable(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("database unavailable while %s", op),
		cause:   cause,
	}
}

// MediaHost marks a failure talking to the external image host.
func MediaHost(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrMediaHost,
		Message: message,
		cause:   cause,
	}
}

// RateLimited creates a 429 error.
func RateLimited(message string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: message,
	}
}
