// ABOUTME: In-memory typed cache with TTL-based expiration
// ABOUTME: Backs the memory session store; cleanup runs until Close is called

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache is a concurrency-safe key/value store whose entries expire after a TTL.
type Cache[V any] struct {
	store sync.Map
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// New creates a cache with the given default TTL and starts the cleanup loop.
func New[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go c.startCleanup(time.Minute)
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return zero, false
	}

	e := val.(entry[V])
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return zero, false
	}

	return e.data, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.store.Store(key, entry[V]{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	})
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

func (c *Cache[V]) Clear(key string) {
	c.store.Delete(key)
}

// Len counts live entries. Expired entries that have not been swept are skipped.
func (c *Cache[V]) Len() int {
	n := 0
	now := time.Now()
	c.store.Range(func(_, val any) bool {
		if !now.After(val.(entry[V]).expiresAt) {
			n++
		}
		return true
	})
	return n
}

// Close stops the cleanup goroutine. The cache stays readable afterwards.
func (c *Cache[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[V]) startCleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.sweep(now)
		}
	}
}

func (c *Cache[V]) sweep(now time.Time) {
	c.store.Range(func(key, val any) bool {
		if now.After(val.(entry[V]).expiresAt) {
			c.store.Delete(key)
		}
		return true
	})
}
