// ABOUTME: Session persistence contract and the in-memory backend
// ABOUTME: Memory sessions live in the TTL cache and vanish on restart

package services

import (
	"context"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/cache"
	"github.com/galaxy-weather/weather-portal/backend/models"
)

// SessionStore persists session records by id
type SessionStore interface {
	// Load returns ErrSessionNotFound for unknown or expired ids
	Load(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Purger is implemented by stores that need periodic removal of expired rows
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// MemorySessionStore keeps sessions in an in-process TTL cache
type MemorySessionStore struct {
	cache *cache.Cache[models.Session]
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates a memory store; ttl is the fallback entry lifetime
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{cache: cache.New[models.Session](ttl)}
}

func (s *MemorySessionStore) Load(ctx context.Context, id string) (*models.Session, error) {
	session, ok := s.cache.Get(sessionKey(id))
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	s.cache.SetWithTTL(sessionKey(session.ID), *session, ttl)
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.cache.Clear(sessionKey(id))
	return nil
}

func (s *MemorySessionStore) Close() error {
	s.cache.Close()
	return nil
}

// sessionKey returns the storage key for a session ID
func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
