package services

import (
	"context"
	"time"

	"github.com/yigit/skillmart/internal/app/repositories"
	"github.com/yigit/skillmart/internal/pkg/logger"
)

// SessionSweeper purges wizard sessions that have been idle for longer than the TTL
type SessionSweeper struct {
	sessions repositories.SessionStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewSessionSweeper creates a new sweeper
func NewSessionSweeper(sessions repositories.SessionStore, ttl, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{sessions: sessions, ttl: ttl, interval: interval, now: time.Now}
}

// Run sweeps every interval until ctx is done
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info().Dur("ttl", s.ttl).Dur("interval", s.interval).Msg("Session sweeper started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Session sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				logger.Error().Err(err).Msg("Session sweep failed")
			}
		}
	}
}

// SweepOnce deletes the sessions idle since before now-ttl
func (s *SessionSweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteIdleBefore(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info().Int64("count", n).Msg("Idle wizard sessions purged")
	}
	return n, nil
}
