// ABOUTME: Token store contract and in-process implementation
// ABOUTME: Includes the opt-in expiry policy that hides expired JWT bearer tokens

package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore holds at most one bearer token.
// GetToken returns ("", false) when no token is held.
type TokenStore interface {
	GetToken(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// MemoryTokenStore keeps the token in process memory
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

var _ TokenStore = (*MemoryTokenStore)(nil)

// NewMemoryTokenStore creates an empty store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) GetToken(ctx context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryTokenStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// ExpiryPolicy decides whether a held token is still presented
type ExpiryPolicy string

const (
	// ExpiryIgnore presents every held token regardless of age
	ExpiryIgnore ExpiryPolicy = "ignore"
	// ExpiryEnforce treats a JWT whose exp claim has passed as absent
	ExpiryEnforce ExpiryPolicy = "enforce"
)

// expiryStore decorates a TokenStore with ExpiryEnforce semantics
type expiryStore struct {
	TokenStore
	now func() time.Time
}

// WithExpiryPolicy wraps store according to policy. ExpiryIgnore returns store unchanged.
func WithExpiryPolicy(store TokenStore, policy ExpiryPolicy) TokenStore {
	if policy != ExpiryEnforce {
		return store
	}
	return &expiryStore{TokenStore: store, now: time.Now}
}

func (s *expiryStore) GetToken(ctx context.Context) (string, bool) {
	token, ok := s.TokenStore.GetToken(ctx)
	if !ok {
		return "", false
	}

	if exp, found := tokenExpiry(token); found && !s.now().Before(exp) {
		slog.Debug("Held token expired, treating as absent", "expired_at", exp)
		if err := s.TokenStore.ClearToken(ctx); err != nil {
			slog.Warn("Failed to clear expired token", "error", err)
		}
		return "", false
	}

	return token, true
}

// tokenExpiry reads the exp claim without verifying the signature.
// Opaque (non-JWT) tokens report found=false.
func tokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

// TokenExpiry exposes the exp claim of a JWT bearer token for status displays.
func TokenExpiry(token string) (time.Time, bool) {
	return tokenExpiry(token)
}
