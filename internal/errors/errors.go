package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// ValidationError carries the per-field messages surfaced verbatim to clients.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NewValidationError builds a validation error from field messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// Predefined domain errors
var (
	// Record errors
	ErrInvalidID = NewDomainError("INVALID_ID", "Invalid Id")
	ErrNotFound  = NewDomainError("NOT_FOUND", "record not found")

	// Identity errors
	ErrEmailExists  = NewDomainError("EMAIL_EXISTS", "Email already exists")
	ErrMobileExists = NewDomainError("MOBILE_EXISTS", "Mobile no. already exists")

	// Authentication errors
	ErrUnauthorized       = NewDomainError("UNAUTHORIZED", "Unauthorized")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "Invalid Credentials")
	ErrInvalidCode        = NewDomainError("INVALID_CODE", "Invalid Code")
	ErrNotVerified        = NewDomainError("NOT_VERIFIED", "Account not verified")
	ErrAccountDisabled    = NewDomainError("ACCOUNT_DISABLED", "Your account is deactivated")

	// Password errors
	ErrOldPasswordInvalid = NewDomainError("OLD_PASSWORD_INVALID", "Old Password Is Not Valid")
	ErrSamePassword       = NewDomainError("SAME_PASSWORD", "New Password Cannot Be The Same As The Old Password")

	// System errors
	ErrInternal = NewDomainError("INTERNAL_ERROR", "internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_ID", "EMAIL_EXISTS", "MOBILE_EXISTS", "INVALID_CODE",
		"OLD_PASSWORD_INVALID", "SAME_PASSWORD", "INVALID_CREDENTIALS":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "NOT_VERIFIED", "ACCOUNT_DISABLED":
		return http.StatusUnauthorized

	// 404 Not Found
	case "NOT_FOUND":
		return http.StatusNotFound

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}

// Messages flattens an error into the envelope's message array. Validation
// errors keep their field messages; everything else becomes a single entry.
func Messages(err error) []string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Messages
	}
	return []string{GetErrorMessage(err)}
}
