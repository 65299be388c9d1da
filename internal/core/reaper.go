package core

// reaper.go expires abandoned import sessions.
//
// A session holds its parsed sheet in memory until the user closes the
// modal. Users who navigate away never do, so a background sweep drops every
// session untouched for longer than the configured TTL.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultReapInterval is how often the reaper sweeps when no interval is set.
const DefaultReapInterval = time.Minute

// StartSessionReaper sweeps idle sessions every interval until ctx ends.
// It blocks; run it in its own goroutine.
func (s *Service) StartSessionReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReapInterval
	}

	slog.Info("session reaper started",
		"interval", interval.String(),
		"ttl", s.cfg.SessionTTL.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case <-ticker.C:
			if n := s.ReapIdle(); n > 0 {
				slog.Info("expired idle import sessions", "count", n, "open", s.SessionCount())
			}
		}
	}
}

// ReapIdle closes every session unused for longer than the TTL and returns
// how many were closed. Sessions busy with a request are skipped.
func (s *Service) ReapIdle() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	s.mu.RLock()
	candidates := make([]*sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		candidates = append(candidates, e)
	}
	s.mu.RUnlock()

	reaped := 0
	for _, e := range candidates {
		if !e.mu.TryLock() {
			continue // in use
		}
		if e.closed || e.lastUsed.After(cutoff) {
			e.mu.Unlock()
			continue
		}
		e.session.Reset()
		e.closed = true
		e.mu.Unlock()

		s.mu.Lock()
		delete(s.sessions, e.id)
		s.mu.Unlock()

		slog.Debug("import session expired", "session_id", e.id, "schema", e.schemaKey)
		reaped++
	}
	return reaped
}
