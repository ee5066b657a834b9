// File: internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeNotAuthenticated ErrorType = "NOT_AUTHENTICATED"
	ErrTypeNotFound         ErrorType = "NOT_FOUND"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeConflict         ErrorType = "CONFLICT"
	ErrTypeUpstream         ErrorType = "UPSTREAM"
	ErrTypeUnknown          ErrorType = "UNKNOWN"
)

// AppError is the service-level error every handler knows how to map.
type AppError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error in %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewNotAuthenticatedError(operation string) *AppError {
	return &AppError{Type: ErrTypeNotAuthenticated, Operation: operation, Message: "Not authenticated"}
}

func NewNotFoundError(operation, msg string) *AppError {
	return &AppError{Type: ErrTypeNotFound, Operation: operation, Message: msg}
}

func NewValidationError(operation, msg string) *AppError {
	return &AppError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewConflictError(operation, msg string, cause error) *AppError {
	return &AppError{Type: ErrTypeConflict, Operation: operation, Message: msg, Cause: cause}
}

func NewUpstreamError(operation, msg string, cause error) *AppError {
	return &AppError{Type: ErrTypeUpstream, Operation: operation, Message: msg, Cause: cause}
}

func NewUnknownError(operation string, cause error) *AppError {
	return &AppError{Type: ErrTypeUnknown, Operation: operation, Message: "internal error", Cause: cause}
}

// ErrorTypeOf returns the AppError type found in err's chain, or ErrTypeUnknown.
func ErrorTypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrTypeUnknown
}
