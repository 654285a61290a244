package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Code so callers can use errors.Is against the predefined values.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrValidation             = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrPersistenceUnavailable = New("PERSISTENCE_UNAVAILABLE", http.StatusServiceUnavailable, "visitor store unavailable")
	ErrAuthInvalid            = New("AUTH_INVALID", http.StatusUnauthorized, "session is missing, invalid or expired")
	ErrInvalidCredentials     = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
	ErrNotFound               = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrAlreadyInside          = New("ALREADY_INSIDE", http.StatusConflict, "visitor already inside the library")
	ErrPayloadTooLarge        = New("PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge, "upload too large")
	ErrRateLimited            = New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests")
	ErrCacheMiss              = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrInternal               = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Persistence wraps a store failure so it surfaces as PERSISTENCE_UNAVAILABLE.
func Persistence(err error, message string) *Error {
	if message == "" {
		message = ErrPersistenceUnavailable.Message
	}
	return Wrap(err, ErrPersistenceUnavailable.Code, ErrPersistenceUnavailable.Status, message)
}
