package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeUnauthorized       ErrorCode = "AUTH-002"
	ErrCodeForbidden          ErrorCode = "AUTH-003"
	ErrCodeRegistrationFailed ErrorCode = "AUTH-004"
	ErrCodeLogoutFailed       ErrorCode = "AUTH-005"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeNotAuthenticated ErrorCode = "SESSION-001"
	ErrCodeSessionExpired   ErrorCode = "SESSION-002"
	ErrCodeSessionStale     ErrorCode = "SESSION-003"

	// Notification errors (NOTIF-001 to NOTIF-099)
	ErrCodeNotificationFetch ErrorCode = "NOTIF-001"
	ErrCodeNotificationMark  ErrorCode = "NOTIF-002"

	// Network errors (NET-001 to NET-099)
	ErrCodeNetwork     ErrorCode = "NET-001"
	ErrCodeServer      ErrorCode = "NET-002"
	ErrCodeBadResponse ErrorCode = "NET-003"

	// Validation errors (VALIDATION-001 to VALIDATION-099)
	ErrCodeValidation ErrorCode = "VALIDATION-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
	ErrCodeFileUnmarshal   ErrorCode = "IO-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
)

// PortalError represents an enhanced error with code and recovery suggestions
type PortalError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *PortalError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PortalError) Unwrap() error {
	return e.Cause
}

// New creates a new PortalError
func New(code ErrorCode, message string) *PortalError {
	return &PortalError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PortalError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PortalError {
	return &PortalError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PortalError) WithSuggestion(suggestion string) *PortalError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PortalError) WithSuggestions(suggestions ...string) *PortalError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CodeOf returns the code of the outermost PortalError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var pe *PortalError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// HasCode reports whether any PortalError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var pe *PortalError
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.Cause
	}
	return false
}

// Common error constructors for frequently used errors

// NewNotAuthenticatedError is returned by operations that need a session.
func NewNotAuthenticatedError() *PortalError {
	return New(ErrCodeNotAuthenticated, "not logged in").
		WithSuggestion("Run 'placement auth login' to sign in")
}

// NewInvalidCredentialsError wraps a rejected login.
func NewInvalidCredentialsError(cause error) *PortalError {
	return Wrap(ErrCodeInvalidCredentials, "login failed", cause).
		WithSuggestion("Check your email and password").
		WithSuggestion("Recruiter and TPO accounts must be approved before they can sign in")
}

// NewSessionExpiredError is returned when persisted credentials can no longer be used.
func NewSessionExpiredError(cause error) *PortalError {
	return Wrap(ErrCodeSessionExpired, "saved session is no longer valid", cause).
		WithSuggestion("Run 'placement auth login' to sign in again")
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(cause error) *PortalError {
	return Wrap(ErrCodeNetwork, "could not reach the placement API", cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify api_url in ~/.placement/config.yaml or PLACEMENT_API_URL")
}

// NewValidationError reports client-side field validation failures.
func NewValidationError(details string) *PortalError {
	return New(ErrCodeValidation, fmt.Sprintf("invalid input: %s", details))
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *PortalError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
