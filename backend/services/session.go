// ABOUTME: Session management for the portal's server-side token storage
// ABOUTME: Creates sessions lazily, exposes per-request handles, and publishes session events

package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/models"
)

// SessionEventKind names a session state change
type SessionEventKind string

const (
	EventTokenSet       SessionEventKind = "token_set"
	EventTokenCleared   SessionEventKind = "token_cleared"
	EventSessionDeleted SessionEventKind = "session_deleted"
)

// SessionEvent is delivered to subscribers after a state change is persisted
type SessionEvent struct {
	Kind      SessionEventKind
	SessionID string
	At        time.Time
}

// SessionManager owns the session store and its subscribers
type SessionManager struct {
	store  SessionStore
	ttl    time.Duration
	policy ExpiryPolicy

	mu          sync.RWMutex
	subscribers map[int]func(SessionEvent)
	nextSubID   int
}

// NewSessionManager creates a manager persisting to store with the given TTL
func NewSessionManager(store SessionStore, ttl time.Duration, policy ExpiryPolicy) *SessionManager {
	return &SessionManager{
		store:       store,
		ttl:         ttl,
		policy:      policy,
		subscribers: make(map[int]func(SessionEvent)),
	}
}

// TTL is the lifetime applied on every session write
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Subscribe registers fn for session events and returns an unsubscribe function.
// fn runs synchronously on the goroutine that changed the session.
func (m *SessionManager) Subscribe(fn func(SessionEvent)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *SessionManager) publish(kind SessionEventKind, sessionID string) {
	event := SessionEvent{Kind: kind, SessionID: sessionID, At: time.Now()}

	m.mu.RLock()
	subs := make([]func(SessionEvent), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

// Open returns a handle for the session with the given id.
// Unknown, expired, or empty ids yield an empty handle; onCreate is called
// when that handle first persists a new session.
func (m *SessionManager) Open(ctx context.Context, id string, onCreate func(*models.Session)) *Session {
	s := &Session{mgr: m, onCreate: onCreate}
	if id == "" {
		return s
	}

	record, err := m.store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			slog.Error("Failed to load session", "error", err)
		}
		return s
	}

	s.record = record
	return s
}

// Tokens returns the TokenStore view of s under the manager's expiry policy
func (m *SessionManager) Tokens(s *Session) TokenStore {
	return WithExpiryPolicy(s, m.policy)
}

// Delete removes a session entirely
func (m *SessionManager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.publish(EventSessionDeleted, id)
	return nil
}

func (m *SessionManager) create() (*models.Session, error) {
	id, err := randomToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &models.Session{ID: id, CreatedAt: now, UpdatedAt: now}, nil
}

// Session is a per-request handle on one server-side session.
// It implements TokenStore.
type Session struct {
	mgr      *SessionManager
	onCreate func(*models.Session)

	mu     sync.Mutex
	record *models.Session
}

var _ TokenStore = (*Session)(nil)

// ID returns the session id, or "" when no session exists yet
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return ""
	}
	return s.record.ID
}

func (s *Session) GetToken(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.record.HasToken() {
		return "", false
	}
	return s.record.Token, true
}

func (s *Session) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	created := false
	if s.record == nil {
		record, err := s.mgr.create()
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.record = record
		created = true
	}
	s.record.Token = token
	s.record.UpdatedAt = time.Now()
	snapshot := *s.record
	s.mu.Unlock()

	if err := s.mgr.store.Save(ctx, &snapshot, s.mgr.ttl); err != nil {
		return err
	}
	if created && s.onCreate != nil {
		s.onCreate(&snapshot)
	}

	s.mgr.publish(EventTokenSet, snapshot.ID)
	return nil
}

func (s *Session) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	if !s.record.HasToken() {
		s.mu.Unlock()
		return nil
	}
	s.record.Token = ""
	s.record.UpdatedAt = time.Now()
	snapshot := *s.record
	s.mu.Unlock()

	if err := s.mgr.store.Save(ctx, &snapshot, s.mgr.ttl); err != nil {
		return err
	}

	s.mgr.publish(EventTokenCleared, snapshot.ID)
	return nil
}

// randomToken returns 32 bytes of cryptographically secure random data, base64url encoded
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
