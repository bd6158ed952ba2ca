// Package maintenance expires stale sessions from both stores.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/cache"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
)

// Report is the outcome of one sweep. Err holds the durable store failure,
// if any; the fast store sweep cannot fail.
type Report struct {
	ExpiredCached int
	DeletedStored int
	Err           error
}

// Sweeper runs a sweep immediately on Run, then at Interval until the context
// is cancelled.
type Sweeper struct {
	Cache      cache.Cache
	Repository repository.SessionRepository
	// Retention is the age after which stored sessions are deleted. Zero or
	// negative skips the durable sweep.
	Retention time.Duration
	// Interval <= 0 runs the startup sweep only.
	Interval time.Duration
	Logger   *slog.Logger

	// NewTicker is replaced in tests; nil means time.NewTicker.
	NewTicker func(d time.Duration) (tick <-chan time.Time, stop func())
	// OnSweep, if set, receives every report.
	OnSweep func(Report)
}

func (s *Sweeper) Run(ctx context.Context) {
	s.RunOnce(ctx)

	if s.Interval <= 0 {
		<-ctx.Done()
		return
	}

	newTicker := s.NewTicker
	if newTicker == nil {
		newTicker = defaultNewTicker
	}
	ch, stop := newTicker(s.Interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) Report {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var r Report
	if s.Cache != nil {
		r.ExpiredCached = s.Cache.CleanupExpired()
	}
	if s.Repository != nil && s.Retention > 0 {
		r.DeletedStored, r.Err = s.Repository.CleanupOldSessions(ctx, s.Retention)
	}

	if r.Err != nil {
		logger.ErrorContext(ctx, "session sweep failed", "expired_cached", r.ExpiredCached, "deleted_stored", r.DeletedStored, "error", r.Err)
	} else if r.ExpiredCached > 0 || r.DeletedStored > 0 {
		logger.InfoContext(ctx, "session sweep finished", "expired_cached", r.ExpiredCached, "deleted_stored", r.DeletedStored)
	} else {
		logger.DebugContext(ctx, "session sweep found nothing to remove")
	}

	if s.OnSweep != nil {
		s.OnSweep(r)
	}
	return r
}

func defaultNewTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
