package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf16"

	"github.com/gonkalabs/detectlang-proxy-go/internal/detect"
)

// MaxTextLen is the longest accepted text, in UTF-16 code units.
const MaxTextLen = 5000

// maxBodyBytes bounds the request body. Each code unit takes at most six
// bytes as a \uXXXX escape; the rest is headroom so slightly oversized text
// still gets the length error instead of a JSON one.
const maxBodyBytes = MaxTextLen*12 + 1024

// Client-facing messages.
const (
	msgNotConfigured = "Language detection service is not configured."
	msgBadJSON       = "Request body must be valid JSON."
	msgTextRequired  = "Text input is required and cannot be empty."
	msgTextTooLong   = "Input text exceeds maximum length (5000 characters)."
	msgAuthFailed    = "Language detection service authentication failed. Check API key."
	msgRateLimited   = "Language detection API request limit exceeded."
	msgInternal      = "Failed to detect language due to an internal server error."
)

// Handler implements all HTTP endpoints.
type Handler struct {
	detector detect.Detector // nil when the service is not configured
	backend  string
}

// New creates a Handler. Pass a nil detector to run in the not-configured
// mode where every detection request fails with 500.
func New(detector detect.Detector, backend string) *Handler {
	return &Handler{
		detector: detector,
		backend:  backend,
	}
}

// Register mounts routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /detect-language", h.detectLanguage)
}

// ---------- endpoints ----------

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"configured": h.detector != nil,
		"backend":    h.backend,
	})
}

func (h *Handler) detectLanguage(w http.ResponseWriter, r *http.Request) {
	if h.detector == nil {
		slog.Error("detect-language: service not configured")
		writeErr(w, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	// text is decoded by hand so a non-string value is reported as missing
	// text rather than as invalid JSON.
	var req struct {
		Text json.RawMessage `json:"text"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeBody(r.Body, &req); err != nil {
		slog.Warn("detect-language: bad request body", "err", err)
		writeErr(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	text, ok := parseText(req.Text)
	if !ok || strings.TrimSpace(text) == "" {
		slog.Warn("detect-language: empty text")
		writeErr(w, http.StatusBadRequest, msgTextRequired)
		return
	}
	if n := textLen(text); n > MaxTextLen {
		slog.Warn("detect-language: text too long", "chars", n)
		writeErr(w, http.StatusBadRequest, msgTextTooLong)
		return
	}

	results, err := h.detector.Detect(r.Context(), text)
	if err != nil {
		status, msg := classify(err)
		slog.Error("detect-language: upstream error", "status", status, "err", err)
		writeErr(w, status, msg)
		return
	}
	if results == nil {
		results = []detect.Detection{}
	}

	slog.Debug("detect-language", "chars", textLen(text), "detections", len(results))
	writeJSON(w, http.StatusOK, results)
}

// ---------- helpers ----------

// decodeBody decodes exactly one JSON value from r. Anything but whitespace
// after it makes the body invalid.
func decodeBody(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// textLen counts UTF-16 code units, the unit browsers and the hosted
// service use for length limits. Characters outside the BMP count twice.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// parseText returns the value of a JSON string. Anything else, including
// null and a missing field, is reported as not ok.
func parseText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// classify maps a detector error to a status code and client message.
// Typed upstream errors are trusted first; message matching is the fallback
// for errors that carry no structure.
func classify(err error) (int, string) {
	var apiErr *detect.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuth():
			return http.StatusInternalServerError, msgAuthFailed
		case apiErr.IsRateLimited():
			return http.StatusTooManyRequests, msgRateLimited
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "Authentication failed"), strings.Contains(msg, "Invalid API key"):
		return http.StatusInternalServerError, msgAuthFailed
	case strings.Contains(msg, "Request limit exceeded"):
		return http.StatusTooManyRequests, msgRateLimited
	}
	return http.StatusInternalServerError, msgInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
