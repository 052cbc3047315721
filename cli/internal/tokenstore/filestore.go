// ABOUTME: File-backed token store for the terminal client
// ABOUTME: Keeps one bearer token in the XDG config directory, readable only by the user

package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/services"
)

// fileName is the token file inside the config directory
const fileName = "token.json"

// FileStore persists the token across runs. The last writer wins.
type FileStore struct {
	mu        sync.Mutex
	configDir string
}

var _ services.TokenStore = (*FileStore)(nil)

type tokenData struct {
	AccessToken string    `json:"access_token"`
	SavedAt     time.Time `json:"saved_at"`
}

// New creates a store rooted at configDir
func New(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "weather-portal")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "weather-portal")
}

// Path is the token file location
func (s *FileStore) Path() string {
	return filepath.Join(s.configDir, fileName)
}

// GetToken reads the token file. A missing or corrupt file means no token.
func (s *FileStore) GetToken(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.read()
	if !ok || data.AccessToken == "" {
		return "", false
	}
	return data.AccessToken, true
}

// SavedAt reports when the current token was written
func (s *FileStore) SavedAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.read()
	if !ok || data.AccessToken == "" {
		return time.Time{}, false
	}
	return data.SavedAt, true
}

// SetToken overwrites the token file with mode 0600
func (s *FileStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(tokenData{AccessToken: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so a concurrent reader never sees a partial file
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// ClearToken removes the token file. Clearing an absent token is a no-op.
func (s *FileStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (s *FileStore) read() (tokenData, bool) {
	raw, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return tokenData{}, false
	}
	if err != nil {
		slog.Warn("Failed to read token file", "path", s.Path(), "error", err)
		return tokenData{}, false
	}

	var data tokenData
	if err := json.Unmarshal(raw, &data); err != nil {
		// Invalid JSON, treat as logged out
		slog.Warn("Ignoring corrupt token file", "path", s.Path(), "error", err)
		return tokenData{}, false
	}
	return data, true
}
