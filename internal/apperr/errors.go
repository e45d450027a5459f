package apperr

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ConfigError       ErrorType = "config"
	GatewayError      ErrorType = "gateway"
	NotFoundError     ErrorType = "not_found"
	BindError         ErrorType = "bind"
	CollaboratorError ErrorType = "collaborator"
	ValidationError   ErrorType = "validation"
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewConfigError(message string, cause error) *AppError {
	return &AppError{Type: ConfigError, Message: message, Cause: cause}
}

func NewGatewayError(message string, cause error) *AppError {
	return &AppError{Type: GatewayError, Message: message, Cause: cause}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Type: NotFoundError, Message: message}
}

func NewBindError(message string, cause error) *AppError {
	return &AppError{Type: BindError, Message: message, Cause: cause}
}

func NewCollaboratorError(message string, cause error) *AppError {
	return &AppError{Type: CollaboratorError, Message: message, Cause: cause}
}

func NewValidationError(message string, cause error) *AppError {
	return &AppError{Type: ValidationError, Message: message, Cause: cause}
}

// IsType reports whether any AppError in err's chain has type t.
func IsType(err error, t ErrorType) bool {
	var ae *AppError
	if !errors.As(err, &ae) {
		return false
	}
	if ae.Type == t {
		return true
	}
	return IsType(ae.Cause, t)
}
