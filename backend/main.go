// ABOUTME: Entry point for the Galaxy weather portal server
// ABOUTME: Wires the auth and resource clients, session storage, and page router

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/config"
	"github.com/galaxy-weather/weather-portal/backend/handlers"
	"github.com/galaxy-weather/weather-portal/backend/logger"
	"github.com/galaxy-weather/weather-portal/backend/middleware"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Galaxy weather portal")
	slog.Info("Authorization server configured", "url", cfg.AuthAPIURL)
	slog.Info("Resource API configured", "url", cfg.APIBaseURL)
	if !cfg.RouteGuard {
		slog.Warn("Route guard disabled, gated pages render without a token")
	}

	transport, err := services.NewTransport(cfg.APIAllProxy)
	if err != nil {
		slog.Error("Failed to configure upstream transport", "error", err)
		os.Exit(1)
	}
	if cfg.APIAllProxy != "" {
		slog.Info("Upstream calls tunnel through SOCKS5 proxy")
	}

	api := services.ProtectedClientConfig{
		BaseURL:   cfg.APIBaseURL,
		Transport: transport,
		Timeout:   cfg.APITimeout,
	}
	if cfg.BreakerEnabled {
		api.Breaker = services.NewBreaker("resource-api", cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout)
		slog.Info("Circuit breaker enabled", "max_failures", cfg.BreakerMaxFailures, "open_timeout", cfg.BreakerOpenTimeout)
	}

	authClient := services.NewAuthClient(services.AuthClientConfig{
		BaseURL:      cfg.AuthAPIURL,
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		Scope:        cfg.OAuthScope,
		Transport:    transport,
		Timeout:      cfg.APITimeout,
	})
	auth := services.NewAuthService(authClient, services.AuthServiceConfig{
		AuthBaseURL:      cfg.AuthAPIURL,
		ExternalLoginURL: cfg.ExternalLoginURL,
	})

	store, sweeper, err := openSessionStore(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to open session store", "backend", cfg.SessionBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if sweeper != nil {
		defer sweeper.Stop()
	}
	slog.Info("Session store initialized", "backend", cfg.SessionBackend, "ttl", cfg.SessionTTL)

	sessions := services.NewSessionManager(store, cfg.SessionTTL, services.ExpiryPolicy(cfg.TokenExpiryPolicy))
	sessions.Subscribe(func(e services.SessionEvent) {
		slog.Debug("Session event", "kind", e.Kind, "session_id", e.SessionID)
	})

	renderer, err := views.New()
	if err != nil {
		slog.Error("Failed to parse page templates", "error", err)
		os.Exit(1)
	}

	opts := handlers.Options{
		Auth:     auth,
		Sessions: sessions,
		API:      api,
		Views:    renderer,
	}
	if cfg.RateLimitEnabled {
		opts.LoginLimiter = middleware.NewRateLimiter(cfg.RateLimitLogin, time.Minute)
		slog.Info("Login rate limit enabled", "per_minute", cfg.RateLimitLogin)
	}

	h := handlers.NewHandler(cfg, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr, "public_url", cfg.PublicURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

// openSessionStore returns the configured backend. SQLite also gets a sweeper
// since expired rows are only filtered on read.
func openSessionStore(ctx context.Context, cfg *config.Config) (services.SessionStore, *services.SessionSweeper, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendSQLite:
		store, err := services.NewSQLiteSessionStore(cfg.SessionDBPath)
		if err != nil {
			return nil, nil, err
		}
		sweeper := services.NewSessionSweeper(store, cfg.SessionSweepInterval)
		if err := sweeper.Start(); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("start session sweeper: %w", err)
		}
		return store, sweeper, nil
	case config.SessionBackendRedis:
		store, err := services.NewRedisSessionStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return services.NewMemorySessionStore(cfg.SessionTTL), nil, nil
	}
}
