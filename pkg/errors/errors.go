// pkg/errors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types
const (
	ErrValidation           = "VALIDATION_ERROR"
	ErrNotFound             = "NOT_FOUND"
	ErrSessionCreation      = "SESSION_CREATION_ERROR"
	ErrValidationRequest    = "VALIDATION_REQUEST_ERROR"
	ErrValidationInProgress = "VALIDATION_IN_PROGRESS"
	ErrPaymentProvider      = "PAYMENT_PROVIDER_ERROR"
	ErrUnauthorized         = "UNAUTHORIZED"
	ErrConflict             = "CONFLICT"
	ErrInternalServer       = "INTERNAL_SERVER_ERROR"
	ErrBadRequest           = "BAD_REQUEST"
)

// AppError represents a custom application error
type AppError struct {
	Type       string `json:"type"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(errorType string, statusCode int, message string, details ...string) *AppError {
	var detail string
	if len(details) > 0 {
		detail = details[0]
	}

	return &AppError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Details:    detail,
	}
}

// Wrap attaches the underlying cause and uses its text as details.
func Wrap(err error, errorType string, statusCode int, message string) *AppError {
	appErr := NewAppError(errorType, statusCode, message)
	if err != nil {
		appErr.Details = err.Error()
		appErr.Err = err
	}
	return appErr
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// GetStatusCode extracts the status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func NewValidationError(details string) *AppError {
	return NewAppError(ErrValidation, http.StatusBadRequest, "validation failed", details)
}

func NewNotFoundError(what string) *AppError {
	return NewAppError(ErrNotFound, http.StatusNotFound, what+" not found")
}

// NewSessionCreationError is returned when a validation session could not be stored.
func NewSessionCreationError(cause error) *AppError {
	return Wrap(cause, ErrSessionCreation, http.StatusBadGateway, "failed to create validation session")
}

// NewValidationRequestError is returned when a session cannot be validated.
func NewValidationRequestError(cause error) *AppError {
	return Wrap(cause, ErrValidationRequest, http.StatusBadGateway, "failed to validate documents")
}

func NewUnknownSessionError(sessionID string) *AppError {
	return NewAppError(ErrValidationRequest, http.StatusNotFound, "unknown validation session", sessionID)
}

func NewValidationInProgressError(sessionID string) *AppError {
	return NewAppError(ErrValidationInProgress, http.StatusConflict, "validation already in progress", sessionID)
}

func NewPaymentProviderError(cause error) *AppError {
	return Wrap(cause, ErrPaymentProvider, http.StatusBadGateway, "payment provider request failed")
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(ErrUnauthorized, http.StatusUnauthorized, message)
}
