package detect

import (
	"net/http"
	"strings"
	"testing"
)

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         APIError
		auth        bool
		rateLimited bool
	}{
		{"unauthorized", APIError{Status: http.StatusUnauthorized}, true, false},
		{"forbidden", APIError{Status: http.StatusForbidden}, true, false},
		{"invalid key code", APIError{Status: http.StatusOK, Code: CodeInvalidKey}, true, false},
		{"too many requests", APIError{Status: http.StatusTooManyRequests}, false, true},
		{"limit code", APIError{Status: http.StatusOK, Code: CodeLimitReached}, false, true},
		{"limit message", APIError{Status: http.StatusBadRequest, Message: "Request limit exceeded"}, false, true},
		{"bad request", APIError{Status: http.StatusBadRequest, Message: "q is required"}, false, false},
		{"server error", APIError{Status: http.StatusInternalServerError}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.IsAuth(); got != tt.auth {
				t.Errorf("IsAuth: expected %v, got %v", tt.auth, got)
			}
			if got := tt.err.IsRateLimited(); got != tt.rateLimited {
				t.Errorf("IsRateLimited: expected %v, got %v", tt.rateLimited, got)
			}
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: http.StatusUnauthorized, Code: CodeInvalidKey, Message: "Invalid API key"}
	if msg := err.Error(); !strings.Contains(msg, "401") || !strings.Contains(msg, "Invalid API key") {
		t.Errorf("unexpected message %q", msg)
	}

	err = &APIError{Status: http.StatusBadGateway, Message: "bad gateway"}
	if msg := err.Error(); strings.Contains(msg, "code") {
		t.Errorf("message should omit a zero code, got %q", msg)
	}
}
