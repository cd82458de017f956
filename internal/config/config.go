package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/blake2b"

	"github.com/gonkalabs/detectlang-proxy-go/internal/detect/detectlanguage"
)

// Detection backends.
const (
	BackendRemote = "remote" // detectlanguage.com
	BackendLocal  = "local"  // in-process whatlanggo
)

// Cfg holds all runtime configuration loaded from environment variables.
type Cfg struct {
	// Upstream detectlanguage.com
	APIKey   string        // DETECTLANGUAGE_API_KEY; empty disables the remote backend
	BaseURL  string        // DETECTLANGUAGE_URL, e.g. https://ws.detectlanguage.com/0.2
	Timeout  time.Duration // DETECTLANGUAGE_TIMEOUT=30s
	Backend  string        // DETECT_BACKEND=remote|local
	LogLevel slog.Level    // LOG_LEVEL=info

	// Server
	ListenAddr string // e.g. :8080
}

// Load reads .env (if present) then environment variables and returns Cfg.
// A missing API key is not an error: the service starts and reports itself
// as not configured.
func Load() (*Cfg, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	baseURL := strings.TrimSpace(os.Getenv("DETECTLANGUAGE_URL"))
	if baseURL == "" {
		baseURL = detectlanguage.DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("DETECTLANGUAGE_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("DETECTLANGUAGE_TIMEOUT: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("DETECTLANGUAGE_TIMEOUT must not be negative, got %s", d)
		}
		timeout = d
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("DETECT_BACKEND")))
	switch backend {
	case "":
		backend = BackendRemote
	case BackendRemote, BackendLocal:
	default:
		return nil, fmt.Errorf("DETECT_BACKEND must be %q or %q, got %q", BackendRemote, BackendLocal, backend)
	}

	level := slog.LevelInfo
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	return &Cfg{
		APIKey:     strings.TrimSpace(os.Getenv("DETECTLANGUAGE_API_KEY")),
		BaseURL:    baseURL,
		Timeout:    timeout,
		Backend:    backend,
		LogLevel:   level,
		ListenAddr: ":" + port,
	}, nil
}

// Configured reports whether the selected backend has what it needs to run.
func (c *Cfg) Configured() bool {
	return c.Backend == BackendLocal || c.APIKey != ""
}

// KeyFingerprint returns a short hash of the API key that is safe to log,
// or "" when no key is set.
func (c *Cfg) KeyFingerprint() string {
	if c.APIKey == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(c.APIKey))
	return hex.EncodeToString(sum[:4])
}
