package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/cache"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
)

// SnapshotStore persists orchestrator sessions to the fast cache for
// cross-worker handoff and to the durable repository for history.
type SnapshotStore struct {
	cache  cache.Cache
	repo   repository.SessionRepository
	logger *slog.Logger
}

func NewSnapshotStore(c cache.Cache, repo repository.SessionRepository, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{cache: c, repo: repo, logger: logger}
}

// Save writes the cache first so other workers see the newest state even when
// the durable write fails. The durable error is returned.
func (s *SnapshotStore) Save(ctx context.Context, sess *interview.Session) error {
	if sess == nil {
		return errors.New("save session: nil session")
	}
	snap := sess.Clone()
	if err := s.cache.Put(ctx, snap.ID, snap); err != nil {
		return fmt.Errorf("cache session %s: %w", snap.ID, err)
	}
	if err := s.repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("store session %s: %w", snap.ID, err)
	}
	return nil
}

// Load returns nil, nil when neither store has the session. A durable hit
// re-warms the cache unless the session is complete, so reading an archived
// session does not make it active again.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (*interview.Session, error) {
	if sess, ok := s.cache.Get(ctx, sessionID); ok {
		return sess, nil
	}
	sess, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if sess == nil {
		return nil, nil
	}
	if sess.IsComplete() {
		return sess, nil
	}
	if err := s.cache.Put(ctx, sessionID, sess); err != nil {
		s.logger.WarnContext(ctx, "failed to re-warm session cache", "session_id", sessionID, "error", err)
	}
	return sess, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	cached := s.cache.Delete(ctx, sessionID)
	stored, err := s.repo.Delete(ctx, sessionID)
	if err != nil {
		return cached, fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return cached || stored, nil
}

func (s *SnapshotStore) ListActive(ctx context.Context) []string {
	return s.cache.ListActive(ctx)
}

func (s *SnapshotStore) ListStored(ctx context.Context) ([]string, error) {
	return s.repo.ListSessions(ctx)
}
