// ABOUTME: SQLite-backed session store so sessions survive portal restarts
// ABOUTME: Expired rows are hidden on read and removed by the sweeper

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/galaxy-weather/weather-portal/backend/models"
)

// SQLiteSessionStore persists sessions in a single SQLite table
type SQLiteSessionStore struct {
	db        *sql.DB
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
	now       func() time.Time
}

var (
	_ SessionStore = (*SQLiteSessionStore)(nil)
	_ Purger       = (*SQLiteSessionStore)(nil)
)

// NewSQLiteSessionStore opens (creating if needed) the database at path
func NewSQLiteSessionStore(path string) (*SQLiteSessionStore, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT    PRIMARY KEY,
			token      TEXT    NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	// Memory databases are per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteSessionStore{
		db:        db,
		writeLock: new(sync.Mutex),
		now:       time.Now,
	}, nil
}

func (s *SQLiteSessionStore) Load(ctx context.Context, id string) (*models.Session, error) {
	var (
		session            models.Session
		createdAt, updated int64
	)

	err := s.db.QueryRowContext(ctx,
		"SELECT id, token, created_at, updated_at FROM sessions WHERE id = ? AND expires_at > ?",
		id, s.now().UnixMilli(),
	).Scan(&session.ID, &session.Token, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	session.CreatedAt = time.UnixMilli(createdAt)
	session.UpdatedAt = time.UnixMilli(updated)
	return &session, nil
}

func (s *SQLiteSessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`,
		session.ID,
		session.Token,
		session.CreatedAt.UnixMilli(),
		session.UpdatedAt.UnixMilli(),
		s.now().Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows whose TTL has passed and reports how many went
func (s *SQLiteSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}
