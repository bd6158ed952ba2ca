package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
)

const (
	DefaultTTL            = 2 * time.Hour
	DefaultConnectTimeout = 2 * time.Second
	DefaultOpTimeout      = time.Second
	DefaultKeyPrefix      = "session:"
)

type Option func(*FastStore)

func WithTTL(ttl time.Duration) Option {
	return func(f *FastStore) { f.ttl = ttl }
}

func WithFallback(enabled bool) Option {
	return func(f *FastStore) { f.fallback = enabled }
}

func WithConnectTimeout(d time.Duration) Option {
	return func(f *FastStore) { f.connectTimeout = d }
}

func WithOpTimeout(d time.Duration) Option {
	return func(f *FastStore) { f.opTimeout = d }
}

func WithKeyPrefix(prefix string) Option {
	return func(f *FastStore) { f.prefix = prefix }
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *FastStore) { f.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(f *FastStore) { f.now = now }
}

// FastStore composes a shared Backend with a local fallback map. The backend
// is probed once at construction; when that probe fails it is never used
// again by this instance.
type FastStore struct {
	backend        Backend
	ttl            time.Duration
	fallback       bool
	connectTimeout time.Duration
	opTimeout      time.Duration
	prefix         string
	logger         *slog.Logger
	now            func() time.Time

	mu    sync.Mutex
	local map[string]localEntry
}

type localEntry struct {
	payload  []byte
	storedAt time.Time
}

var _ Cache = (*FastStore)(nil)

// New probes backend (which may be nil when no shared store is configured)
// and returns a store that degrades to the local map when it is unreachable.
// New owns backend: one that is not adopted is closed before New returns.
func New(ctx context.Context, backend Backend, opts ...Option) (*FastStore, error) {
	f := &FastStore{
		ttl:            DefaultTTL,
		fallback:       true,
		connectTimeout: DefaultConnectTimeout,
		opTimeout:      DefaultOpTimeout,
		prefix:         DefaultKeyPrefix,
		now:            time.Now,
		local:          make(map[string]localEntry),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.ttl <= 0 {
		f.release(backend)
		return nil, fmt.Errorf("session ttl must be positive, got %s", f.ttl)
	}

	if backend == nil {
		if !f.fallback {
			return nil, fmt.Errorf("%w: no backend configured and fallback disabled", ErrBackendUnavailable)
		}
		f.logger.Info("session cache using in-memory store", "ttl", f.ttl.String())
		return f, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, f.connectTimeout)
	defer cancel()
	if err := backend.Ping(pingCtx); err != nil {
		f.logger.Warn("session cache backend unreachable", "backend", backend.Name(), "error", err)
		f.release(backend)
		if !f.fallback {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		f.logger.Info("session cache using in-memory store as fallback", "ttl", f.ttl.String())
		return f, nil
	}
	f.backend = backend
	f.logger.Info("session cache connected", "backend", backend.Name(), "ttl", f.ttl.String())
	return f, nil
}

func (f *FastStore) release(backend Backend) {
	if c, ok := backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			f.logger.Warn("failed to close session cache backend", "backend", backend.Name(), "error", err)
		}
	}
}

// Close releases the shared backend, if one is in use. The local map stays
// readable.
func (f *FastStore) Close() error {
	if f.backend == nil {
		return nil
	}
	c, ok := f.backend.(io.Closer)
	if !ok {
		return nil
	}
	return c.Close()
}

func (f *FastStore) key(sessionID string) string {
	return f.prefix + sessionID
}

// Shared reports whether the shared backend is in use.
func (f *FastStore) Shared() bool {
	return f.backend != nil
}

// Put never fails because of the backend: a failed shared write keeps the
// snapshot locally instead. Only an encoding failure is returned.
func (f *FastStore) Put(ctx context.Context, sessionID string, s *interview.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}

	if f.backend != nil {
		opCtx, cancel := context.WithTimeout(ctx, f.opTimeout)
		err := f.backend.Set(opCtx, f.key(sessionID), payload, f.ttl)
		cancel()
		if err == nil {
			f.mu.Lock()
			delete(f.local, sessionID)
			f.mu.Unlock()
			f.logger.Debug("stored session in shared cache", "session_id", sessionID)
			return nil
		}
		f.logger.Error("failed to store session in shared cache; keeping it in memory", "session_id", sessionID, "error", err)
	}

	f.mu.Lock()
	f.local[sessionID] = localEntry{payload: payload, storedAt: f.now()}
	f.mu.Unlock()
	return nil
}

func (f *FastStore) Get(ctx context.Context, sessionID string) (*interview.Session, bool) {
	if f.backend != nil {
		opCtx, cancel := context.WithTimeout(ctx, f.opTimeout)
		payload, found, err := f.backend.Get(opCtx, f.key(sessionID))
		cancel()
		switch {
		case err != nil:
			f.logger.Error("failed to read session from shared cache", "session_id", sessionID, "error", err)
		case found:
			s, err := decodeSession(payload)
			if err == nil {
				return s, true
			}
			f.logger.Error("failed to decode session from shared cache", "session_id", sessionID, "error", err)
		}
	}

	f.mu.Lock()
	entry, ok := f.local[sessionID]
	if ok && f.expired(entry) {
		delete(f.local, sessionID)
		ok = false
	}
	f.mu.Unlock()
	if !ok {
		return nil, false
	}
	s, err := decodeSession(entry.payload)
	if err != nil {
		f.logger.Error("failed to decode session from memory", "session_id", sessionID, "error", err)
		return nil, false
	}
	return s, true
}

// Delete removes the session everywhere and reports whether any copy existed.
// It returns false only when every store answered that the session is absent;
// a failed shared delete is not such an answer.
func (f *FastStore) Delete(ctx context.Context, sessionID string) bool {
	found := false
	if f.backend != nil {
		opCtx, cancel := context.WithTimeout(ctx, f.opTimeout)
		deleted, err := f.backend.Delete(opCtx, f.key(sessionID))
		cancel()
		if err != nil {
			f.logger.Error("failed to delete session from shared cache", "session_id", sessionID, "error", err)
			found = true
		} else {
			found = deleted
		}
	}

	f.mu.Lock()
	if _, ok := f.local[sessionID]; ok {
		delete(f.local, sessionID)
		found = true
	}
	f.mu.Unlock()
	return found
}

func (f *FastStore) ListActive(ctx context.Context) []string {
	ids := make(map[string]struct{})
	if f.backend != nil {
		for _, id := range f.sharedIDs(ctx) {
			ids[id] = struct{}{}
		}
	}

	f.mu.Lock()
	for id, entry := range f.local {
		if f.expired(entry) {
			delete(f.local, id)
			continue
		}
		ids[id] = struct{}{}
	}
	f.mu.Unlock()

	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CleanupExpired sweeps the local map only; the shared backend expires keys
// on its own.
func (f *FastStore) CleanupExpired() int {
	f.mu.Lock()
	count := 0
	for id, entry := range f.local {
		if f.expired(entry) {
			delete(f.local, id)
			count++
		}
	}
	f.mu.Unlock()
	if count > 0 {
		f.logger.Info("cleaned up expired in-memory sessions", "count", count)
	}
	return count
}

func (f *FastStore) Stats(ctx context.Context) Stats {
	st := Stats{Backend: "memory", TTL: f.ttl}
	if f.backend != nil {
		st.Backend = f.backend.Name()
		st.SharedSessions = len(f.sharedIDs(ctx))
	}
	f.mu.Lock()
	st.LocalSessions = len(f.local)
	f.mu.Unlock()
	st.TotalActive = len(f.ListActive(ctx))
	return st
}

func (f *FastStore) sharedIDs(ctx context.Context) []string {
	opCtx, cancel := context.WithTimeout(ctx, f.opTimeout)
	defer cancel()
	keys, err := f.backend.Keys(opCtx, f.prefix)
	if err != nil {
		f.logger.Error("failed to list sessions in shared cache", "error", err)
		return nil
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, f.prefix))
	}
	return ids
}

// expired must be called with f.mu held.
func (f *FastStore) expired(entry localEntry) bool {
	return f.now().Sub(entry.storedAt) >= f.ttl
}

func decodeSession(payload []byte) (*interview.Session, error) {
	var s interview.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
