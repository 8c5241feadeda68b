package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"not found", NewNotFound("document", "d1"), ErrNotFound, http.StatusNotFound},
		{"validation", NewValidation("title too long (%d)", 300), ErrValidation, http.StatusBadRequest},
		{"conflict", &ConflictError{Message: "exists", ResourceType: "image", ResourceID: "i1"}, ErrConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.sentinel)
			}
			var httpErr HTTPError
			if !errors.As(wrapped, &httpErr) {
				t.Fatalf("errors.As HTTPError failed for %v", wrapped)
			}
			if httpErr.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", httpErr.StatusCode(), tt.status)
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := NewNotFound("document", "abc").Error(); got != "document abc not found" {
		t.Errorf("Error() = %q", got)
	}
}
