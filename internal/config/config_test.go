package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gonkalabs/detectlang-proxy-go/internal/detect/detectlanguage"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{
		"DETECTLANGUAGE_API_KEY", "DETECTLANGUAGE_URL", "DETECTLANGUAGE_TIMEOUT",
		"DETECT_BACKEND", "LOG_LEVEL", "PORT",
	} {
		t.Setenv(k, env[k])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, nil)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "" {
		t.Errorf("expected empty key, got %q", cfg.APIKey)
	}
	if cfg.BaseURL != detectlanguage.DefaultBaseURL {
		t.Errorf("unexpected base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.Timeout)
	}
	if cfg.Backend != BackendRemote {
		t.Errorf("expected remote backend, got %q", cfg.Backend)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %s", cfg.LogLevel)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.ListenAddr)
	}
	if cfg.Configured() {
		t.Error("remote backend without a key must not be configured")
	}
	if fp := cfg.KeyFingerprint(); fp != "" {
		t.Errorf("expected empty fingerprint, got %q", fp)
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DETECTLANGUAGE_API_KEY": "  secret  ",
		"DETECTLANGUAGE_URL":     "http://localhost:9000/0.2/",
		"DETECTLANGUAGE_TIMEOUT": "5s",
		"DETECT_BACKEND":         "LOCAL",
		"LOG_LEVEL":              "debug",
		"PORT":                   "9090",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("expected trimmed key, got %q", cfg.APIKey)
	}
	if cfg.BaseURL != "http://localhost:9000/0.2" {
		t.Errorf("expected trailing slash stripped, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.Timeout)
	}
	if cfg.Backend != BackendLocal {
		t.Errorf("expected local backend, got %q", cfg.Backend)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", cfg.LogLevel)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("expected :9090, got %q", cfg.ListenAddr)
	}
	if !cfg.Configured() {
		t.Error("expected configured")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad timeout":      {"DETECTLANGUAGE_TIMEOUT": "soon"},
		"negative timeout": {"DETECTLANGUAGE_TIMEOUT": "-1s"},
		"bad backend":      {"DETECT_BACKEND": "cloud"},
		"bad log level":    {"LOG_LEVEL": "loud"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			setEnv(t, env)
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestKeyFingerprint(t *testing.T) {
	a := (&Cfg{APIKey: "key-a"}).KeyFingerprint()
	b := (&Cfg{APIKey: "key-b"}).KeyFingerprint()

	if len(a) != 8 {
		t.Errorf("expected 8 hex chars, got %q", a)
	}
	if a == b {
		t.Error("different keys must have different fingerprints")
	}
	if a != (&Cfg{APIKey: "key-a"}).KeyFingerprint() {
		t.Error("fingerprint must be stable")
	}
	if a == "key-a" {
		t.Error("fingerprint must not expose the key")
	}
}
