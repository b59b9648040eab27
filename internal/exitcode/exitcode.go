package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/platform"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ValidationError indicates form input rejected before reaching the API
	ValidationError = 3

	// Forbidden indicates the signed-in role may not perform the operation
	Forbidden = 4

	// AuthError indicates missing, rejected or expired credentials
	AuthError = 5

	// NetworkError indicates the API could not be reached
	NetworkError = 6

	// Interrupted indicates the user cancelled with Ctrl+C
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to a process exit code. Coded errors and
// API statuses are consulted first; cobra's usage errors are recognised by text.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeValidation, errors.ErrCodeConfigInvalid:
		return ValidationError
	case errors.ErrCodeInvalidCredentials, errors.ErrCodeUnauthorized,
		errors.ErrCodeNotAuthenticated, errors.ErrCodeSessionExpired, errors.ErrCodeSessionStale:
		return AuthError
	case errors.ErrCodeForbidden:
		return Forbidden
	case errors.ErrCodeNetwork:
		return NetworkError
	}

	switch {
	case platform.IsUnauthorized(err):
		return AuthError
	case platform.IsForbidden(err):
		return Forbidden
	case stderrors.Is(err, context.DeadlineExceeded):
		return NetworkError
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown flag") ||
		strings.Contains(errMsg, "invalid argument") || strings.Contains(errMsg, "required flag") ||
		strings.Contains(errMsg, "accepts ") {
		return UsageError
	}

	return GeneralError
}
