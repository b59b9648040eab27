package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/platform"
)

// ErrorWithSuggestion wraps an error with a recovery hint
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{Err: err, Suggestion: suggestion}
}

// EnhanceError attaches a suggestion to errors that do not already carry one.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var pe *errors.PortalError
	if stderrors.As(err, &pe) && len(pe.Suggestions) > 0 {
		return err
	}

	switch {
	case platform.IsUnauthorized(err):
		return NewErrorWithSuggestion(err, "Your session was rejected. Run 'placement auth login' to sign in again")
	case platform.IsForbidden(err):
		return NewErrorWithSuggestion(err, "Your role is not allowed to do this. Check 'placement auth status'")
	case platform.IsNetwork(err):
		return NewErrorWithSuggestion(err, "Check that the portal API is reachable at the configured api_url")
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeValidation:
		return NewErrorWithSuggestion(err, "Fix the fields listed above and try again")
	case errors.ErrCodeConfigInvalid:
		return NewErrorWithSuggestion(err, "Check ~/.placement/config.yaml and PLACEMENT_* environment variables")
	case errors.ErrCodeFileWriteFailed, errors.ErrCodeFileReadFailed:
		return NewErrorWithSuggestion(err, "Check permissions on ~/.placement or pass --token-file")
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") {
		return NewErrorWithSuggestion(err, "Check your network connection and the configured api_url")
	}
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err, "Check file permissions on ~/.placement")
	}

	return err
}
