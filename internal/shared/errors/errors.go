package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeMalformedLine indicates an unparsable protocol line
	ErrorTypeMalformedLine ErrorType = "malformed_line"
	// ErrorTypeSessionDisconnected indicates an agent stream closed or failed
	ErrorTypeSessionDisconnected ErrorType = "session_disconnected"
	// ErrorTypeInvalidCommand indicates a fleet command the galaxy cannot carry out
	ErrorTypeInvalidCommand ErrorType = "invalid_command"
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeValidation indicates invalid input data
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeUnauthorized indicates authentication failure
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeConflict indicates a request that does not fit the match state
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeForbidden indicates insufficient permissions
	ErrorTypeForbidden ErrorType = "forbidden"
	// ErrorTypeInternal indicates an internal failure
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeExternal indicates an external service error
	ErrorTypeExternal ErrorType = "external"
)

// AppError is the base error type for application errors
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
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

// MalformedLinef creates a malformed protocol line error with formatting
func MalformedLinef(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeMalformedLine,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapMalformedLine wraps a parse failure as a malformed line error
func WrapMalformedLine(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeMalformedLine,
		Message: message,
		Err:     err,
	}
}

// SessionDisconnected wraps a stream failure as a disconnected session error
func SessionDisconnected(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeSessionDisconnected,
		Message: message,
		Err:     err,
	}
}

// InvalidCommandf creates an invalid command error with formatting
func InvalidCommandf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeInvalidCommand,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFoundf creates a not found error with formatting
func NotFoundf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// Validation creates a validation error
func Validation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// Validationf creates a validation error with formatting
func Validationf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapValidation wraps an error as a validation error
func WrapValidation(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Err:     err,
	}
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Conflict creates a conflict error
func Conflict(message string) error {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) error {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// Forbidden creates a forbidden error
func Forbidden(message string) error {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Message: message,
	}
}

// WrapExternal wraps an error as an external service error
func WrapExternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// GetType returns the error type of an error
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Is reports whether err carries the given error type
func Is(err error, errorType ErrorType) bool {
	return err != nil && GetType(err) == errorType
}
