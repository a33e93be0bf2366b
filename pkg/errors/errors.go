package errors

import (
	"errors"
	"fmt"
)

// AppError is the base interface for all application errors. Code is a
// stable machine-readable identifier surfaced next to the message.
type AppError interface {
	error
	Code() string
}

// APIError represents a non-2xx response from the org's REST API.
type APIError struct {
	Status    int    // HTTP status code
	ErrorCode string // platform error code, e.g. INVALID_SESSION_ID
	Message   string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.Status, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

func (e *APIError) Code() string {
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	return "API_ERROR"
}

// NewAPIError creates a new APIError
func NewAPIError(status int, errorCode, message string) *APIError {
	return &APIError{Status: status, ErrorCode: errorCode, Message: message}
}

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents invalid operator input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError represents an authentication or token-exchange failure
type AuthError struct {
	Reason string
	Cause  error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s (caused by: %v)", e.Reason, e.Cause)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Code() string {
	return "AUTH_FAILED"
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates a new AuthError
func NewAuthError(reason string, cause error) *AuthError {
	return &AuthError{Reason: reason, Cause: cause}
}

// Helper functions for error checking

// IsAPI checks if an error is an APIError
func IsAPI(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

// IsAuth checks if an error is an AuthError
func IsAuth(err error) bool {
	var auth *AuthError
	return errors.As(err, &auth)
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}
