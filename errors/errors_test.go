package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := InvalidInput("test.op", nil, "test message")

	if err.Code != http.StatusBadRequest {
		t.Errorf("expected code %d, got %d", http.StatusBadRequest, err.Code)
	}
	if err.Error() != "test message" {
		t.Errorf("expected error string 'test message', got '%s'", err.Error())
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("cause error")
	err := Internal("test.op", cause, "test message")

	expected := "test message: cause error"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
	if err.Unwrap() != cause {
		t.Errorf("expected Unwrap to return the cause")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "not found error",
			err:      NotFound("op", nil, "not found"),
			expected: true,
		},
		{
			name:     "wrapped not found error",
			err:      fmt.Errorf("outer: %w", NotFound("op", nil, "not found")),
			expected: true,
		},
		{
			name:     "other error",
			err:      InvalidInput("op", nil, "bad request"),
			expected: false,
		},
		{
			name:     "non-custom error",
			err:      fmt.Errorf("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid input", InvalidInput("op", nil, "x"), http.StatusBadRequest},
		{"not found", NotFound("op", nil, "x"), http.StatusNotFound},
		{"internal", Internal("op", nil, "x"), http.StatusInternalServerError},
		{"rate limit", RateLimitExceeded("op"), http.StatusTooManyRequests},
		{"explicit", E("op", nil, "x", http.StatusMethodNotAllowed), http.StatusMethodNotAllowed},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.expected {
				t.Errorf("expected code %d, got %d", tt.expected, got)
			}
		})
	}
}
