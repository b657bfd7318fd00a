package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrValidation ErrorCode = iota + 1000
	ErrNotFound
	ErrInvalidTransition
	ErrPersistence
	ErrInternal
)

// Error constructors
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func Validationf(format string, args ...interface{}) *AppError {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

func InvalidTransition(from, to, reason string) *AppError {
	msg := fmt.Sprintf("invalid status transition %s -> %s", from, to)
	if reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, reason)
	}
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: msg,
	}
}

func Persistence(message string, err error) *AppError {
	return &AppError{
		Code:    ErrPersistence,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal error",
		Err:     err,
	}
}

// Is reports whether err carries the given application error code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsValidation(err error) bool        { return Is(err, ErrValidation) }
func IsNotFound(err error) bool          { return Is(err, ErrNotFound) }
func IsInvalidTransition(err error) bool { return Is(err, ErrInvalidTransition) }
func IsPersistence(err error) bool       { return Is(err, ErrPersistence) }
