// Package detect defines the contract between the HTTP handler and whatever
// backend actually guesses the language of a text.
package detect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Detection is a single ranked guess returned by a backend.
type Detection struct {
	Language   string  `json:"language"`
	IsReliable bool    `json:"isReliable"`
	Confidence float64 `json:"confidence"`
}

// Detector guesses the language of text. The returned slice is ordered by
// the backend and must not be reordered by callers.
// Implementations must be safe for concurrent use.
type Detector interface {
	Detect(ctx context.Context, text string) ([]Detection, error)
}

// Provider error codes reported by detectlanguage.com.
const (
	CodeInvalidKey   = 1
	CodeLimitReached = 2
)

// APIError is a failure reported by the upstream service itself, as opposed
// to a transport or decoding failure.
type APIError struct {
	Status  int    // HTTP status of the upstream response
	Code    int    // provider error code, 0 when absent
	Message string // provider error message
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("detectlanguage: status %d: code %d: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("detectlanguage: status %d: %s", e.Status, e.Message)
}

// IsAuth reports whether the upstream rejected our credentials.
func (e *APIError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized ||
		e.Status == http.StatusForbidden ||
		e.Code == CodeInvalidKey
}

// IsRateLimited reports whether the upstream refused the call because a
// request or byte quota was exhausted.
func (e *APIError) IsRateLimited() bool {
	if e.Status == http.StatusTooManyRequests || e.Code == CodeLimitReached {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "limit exceeded")
}
