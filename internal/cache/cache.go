// Package cache keeps session snapshots available to every worker for a
// bounded time. A shared Backend is used when reachable; otherwise entries are
// kept in a process-local map with the same TTL.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
)

// ErrBackendUnavailable is returned by New when the shared backend cannot be
// reached and the in-process fallback is disabled.
var ErrBackendUnavailable = errors.New("session cache backend unavailable")

// Backend is a shared key/value store with native expiry.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get reports found=false with a nil error when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Cache is the session-level view consumed by callers.
type Cache interface {
	Put(ctx context.Context, sessionID string, s *interview.Session) error
	Get(ctx context.Context, sessionID string) (*interview.Session, bool)
	Delete(ctx context.Context, sessionID string) bool
	ListActive(ctx context.Context) []string
	CleanupExpired() int
	Stats(ctx context.Context) Stats
}

type Stats struct {
	Backend        string        `json:"backend" yaml:"backend"`
	TTL            time.Duration `json:"ttl" yaml:"ttl"`
	SharedSessions int           `json:"shared_sessions" yaml:"shared_sessions"`
	LocalSessions  int           `json:"local_sessions" yaml:"local_sessions"`
	TotalActive    int           `json:"total_active" yaml:"total_active"`
}
