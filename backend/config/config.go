// ABOUTME: Configuration loader for the weather portal server
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Token expiry policies
const (
	TokenPolicyIgnore  = "ignore"
	TokenPolicyEnforce = "enforce"
)

// Password grant client defaults registered on the authorization server
const (
	DefaultClientID     = "client-02"
	DefaultClientSecret = "secret"
	DefaultScope        = "roles profile email"
)

type Config struct {
	// Server
	Port               string
	PublicURL          string   // externally visible base URL, used to build the federated callback
	CookieSecure       bool     // Set Secure flag on session cookies (default: true)
	CORSAllowedOrigins []string // allowed CORS origins for /api/v1 (empty = block all cross-origin)
	RouteGuard         bool     // redirect gated pages to login when no token is held (default: true)

	// Upstream services
	AuthAPIURL       string
	APIBaseURL       string
	ExternalLoginURL string // empty = {AuthAPIURL}/Account/ExternalLogin?provider=Microsoft
	APITimeout       time.Duration
	APIAllProxy      string // ssh+socks5://user@host:port?private-key=/path

	// OAuth Client (password grant)
	OAuthClientID     string
	OAuthClientSecret string
	OAuthScope        string

	// Sessions
	SessionBackend       string
	SessionTTL           time.Duration
	SessionDBPath        string
	RedisURL             string
	SessionSweepInterval time.Duration
	TokenExpiryPolicy    string

	// Rate Limiting
	RateLimitEnabled bool
	RateLimitLogin   int // login attempts per minute per client IP (default: 5)

	// Circuit breaker around the resource API
	BreakerEnabled     bool
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

// CallbackURL is the absolute URL of the local federated-login callback.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/callback"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		PublicURL:          getEnv("PUBLIC_URL", "http://localhost:8080"),
		CookieSecure:       getEnvBool("COOKIE_SECURE", true),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		RouteGuard:         getEnvBool("ROUTE_GUARD", true),

		AuthAPIURL:       strings.TrimRight(ensureScheme(os.Getenv("AUTH_API_URL")), "/"),
		APIBaseURL:       strings.TrimRight(ensureScheme(os.Getenv("API_BASE_URL")), "/"),
		ExternalLoginURL: os.Getenv("EXTERNAL_LOGIN_URL"),
		APITimeout:       getEnvDuration("API_TIMEOUT", 30*time.Second),
		APIAllProxy:      os.Getenv("API_ALL_PROXY"),

		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", DefaultClientID),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", DefaultClientSecret),
		OAuthScope:        getEnv("OAUTH_SCOPE", DefaultScope),

		SessionBackend:       strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		SessionTTL:           getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		SessionDBPath:        getEnv("SESSION_DB_PATH", "var/sessions.db"),
		RedisURL:             os.Getenv("REDIS_URL"),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		TokenExpiryPolicy:    strings.ToLower(getEnv("TOKEN_EXPIRY_POLICY", TokenPolicyIgnore)),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitLogin:   getEnvInt("RATE_LIMIT_LOGIN", 5),

		BreakerEnabled:     getEnvBool("BREAKER_ENABLED", true),
		BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerOpenTimeout: getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
	}

	// Validate required fields
	if cfg.AuthAPIURL == "" {
		return nil, fmt.Errorf("AUTH_API_URL is required")
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	switch cfg.SessionBackend {
	case SessionBackendMemory, SessionBackendSQLite:
	case SessionBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when SESSION_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND: %q (must be memory, sqlite, or redis)", cfg.SessionBackend)
	}

	switch cfg.TokenExpiryPolicy {
	case TokenPolicyIgnore, TokenPolicyEnforce:
	default:
		return nil, fmt.Errorf("invalid TOKEN_EXPIRY_POLICY: %q (must be ignore or enforce)", cfg.TokenExpiryPolicy)
	}

	if cfg.RateLimitLogin < 1 || cfg.RateLimitLogin > 10000 {
		return nil, fmt.Errorf("RATE_LIMIT_LOGIN must be between 1 and 10000, got %d", cfg.RateLimitLogin)
	}
	if cfg.BreakerMaxFailures < 1 {
		return nil, fmt.Errorf("BREAKER_MAX_FAILURES must be at least 1, got %d", cfg.BreakerMaxFailures)
	}
	if cfg.SessionTTL < time.Minute {
		return nil, fmt.Errorf("SESSION_TTL must be at least 1m, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
