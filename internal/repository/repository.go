// Package repository defines the durable session store. Implementations keep
// a session and its exchanges, evaluations and coaching feedback in a
// relational database, one transaction per operation.
package repository

import (
	"context"
	"time"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
)

type SessionRepository interface {
	// Save replaces the stored copy of s atomically: the session row is
	// upserted and every exchange row is rewritten in list order.
	Save(ctx context.Context, s *interview.Session) error
	// Load returns nil, nil when the session does not exist.
	Load(ctx context.Context, sessionID string) (*interview.Session, error)
	Delete(ctx context.Context, sessionID string) (bool, error)
	// ListSessions returns ids ordered by creation time, newest first.
	ListSessions(ctx context.Context) ([]string, error)
	// CleanupOldSessions deletes sessions created more than maxAge ago. Each
	// session is removed in its own transaction, so a failure part way keeps
	// earlier deletions.
	CleanupOldSessions(ctx context.Context, maxAge time.Duration) (int, error)
	Stats(ctx context.Context) (StorageStats, error)
	Close() error
}
