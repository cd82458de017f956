package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gonkalabs/detectlang-proxy-go/internal/api"
	"github.com/gonkalabs/detectlang-proxy-go/internal/config"
	"github.com/gonkalabs/detectlang-proxy-go/internal/detect"
	"github.com/gonkalabs/detectlang-proxy-go/internal/detect/detectlanguage"
	"github.com/gonkalabs/detectlang-proxy-go/internal/detect/local"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	var detector detect.Detector
	switch {
	case cfg.Backend == config.BackendLocal:
		detector = local.New()
		slog.Info("using local detector")
	case cfg.APIKey == "":
		// Keep serving so the endpoint reports the problem instead of the
		// process disappearing.
		slog.Error("DETECTLANGUAGE_API_KEY environment variable is not set; language detection is disabled")
	default:
		client := detectlanguage.New(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
		detector = client
		checkAccount(client)
	}

	handler := api.New(detector, cfg.Backend)

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout(cfg.Timeout),
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)

		shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutCancel()

		if err := srv.Shutdown(shutCtx); err != nil {
			slog.Error("shutdown error", "err", err)
		}
	}()

	slog.Info("starting language detection server",
		"addr", cfg.ListenAddr,
		"backend", cfg.Backend,
		"configured", cfg.Configured(),
		"key", cfg.KeyFingerprint(),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// writeTimeout leaves room for the upstream call plus encoding. An unbounded
// upstream call gets an unbounded write.
func writeTimeout(upstream time.Duration) time.Duration {
	if upstream == 0 {
		return 0
	}
	return upstream + 30*time.Second
}

// checkAccount logs the upstream account status. A failure here is only a
// warning: the key may still work once the upstream recovers.
func checkAccount(client *detectlanguage.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := client.Status(ctx)
	if err != nil {
		slog.Warn("detectlanguage account check failed", "err", err)
		return
	}
	slog.Info("detectlanguage account",
		"plan", st.Plan,
		"status", st.Status,
		"requestsToday", st.Requests,
		"dailyRequestsLimit", st.DailyRequestsMax,
	)
}
