package ux

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/platform"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	if got := NewErrorWithSuggestion(nil, "anything"); got != nil {
		t.Errorf("NewErrorWithSuggestion(nil) = %v, want nil", got)
	}

	err := NewErrorWithSuggestion(stderrors.New("boom"), "try again")
	if !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "try again") {
		t.Errorf("message %q should contain error and suggestion", err.Error())
	}

	plain := NewErrorWithSuggestion(stderrors.New("boom"), "")
	if plain.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "boom")
	}
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantSuggestion string
	}{
		{
			name:           "unauthorized response",
			err:            &platform.APIError{StatusCode: 401, Message: "jwt expired"},
			wantSuggestion: "placement auth login",
		},
		{
			name:           "forbidden response",
			err:            &platform.APIError{StatusCode: 403, Message: "forbidden"},
			wantSuggestion: "Your role is not allowed",
		},
		{
			name:           "validation",
			err:            errors.NewValidationError("email: is required"),
			wantSuggestion: "Fix the fields",
		},
		{
			name:           "config",
			err:            errors.New(errors.ErrCodeConfigInvalid, "bad poll_interval"),
			wantSuggestion: "config.yaml",
		},
		{
			name:           "connection refused",
			err:            stderrors.New("dial tcp 127.0.0.1:4000: connection refused"),
			wantSuggestion: "network connection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceError(tt.err)
			if !strings.Contains(got.Error(), tt.wantSuggestion) {
				t.Errorf("EnhanceError() = %q, want suggestion containing %q", got.Error(), tt.wantSuggestion)
			}
		})
	}
}

func TestEnhanceError_LeavesSuggestedErrorsAlone(t *testing.T) {
	err := errors.NewNotAuthenticatedError()
	if got := EnhanceError(err); got != error(err) {
		t.Errorf("EnhanceError() wrapped an error that already had suggestions: %v", got)
	}

	plain := stderrors.New("something odd")
	if got := EnhanceError(plain); got != plain {
		t.Errorf("EnhanceError() = %v, want the original error", got)
	}
	if EnhanceError(nil) != nil {
		t.Error("EnhanceError(nil) should be nil")
	}
}
