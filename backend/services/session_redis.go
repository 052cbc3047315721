// ABOUTME: Redis-backed session store for portals running several replicas
// ABOUTME: Records are JSON values under session:<id> with a native key TTL

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/galaxy-weather/weather-portal/backend/models"
)

// redisSession is the stored form; models.Session hides the token from JSON
type redisSession struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisSessionStore keeps sessions in Redis
type RedisSessionStore struct {
	client *redis.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore connects using a redis:// URL and pings the server
func NewRedisSessionStore(ctx context.Context, redisURL string) (*RedisSessionStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisSessionStoreFromClient(client), nil
}

// NewRedisSessionStoreFromClient wraps an existing client
func NewRedisSessionStoreFromClient(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Load(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var stored redisSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &models.Session{
		ID:        stored.ID,
		Token:     stored.Token,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(redisSession{
		ID:        session.ID,
		Token:     session.Token,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
