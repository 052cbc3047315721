// ABOUTME: Scheduled purge of expired sessions for stores that keep them on disk
// ABOUTME: Runs on a gocron scheduler until stopped

package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// SessionSweeper periodically calls PurgeExpired on a store
type SessionSweeper struct {
	scheduler *gocron.Scheduler
	purger    Purger
	interval  time.Duration
}

// NewSessionSweeper creates a sweeper; call Start to begin purging
func NewSessionSweeper(purger Purger, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		purger:    purger,
		interval:  interval,
	}
}

// Start schedules the purge job and returns immediately
func (s *SessionSweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.Sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	slog.Info("Session sweeper started", "interval", s.interval)
	return nil
}

// Sweep runs one purge pass
func (s *SessionSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		slog.Error("Session purge failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Purged expired sessions", "count", n)
	}
}

func (s *SessionSweeper) Stop() {
	s.scheduler.Stop()
}
