package repository

import (
	"log/slog"
	"time"
)

const DefaultLockTimeout = 5 * time.Second

type Option func(*options)

type options struct {
	now         func() time.Time
	lockTimeout time.Duration
	logger      *slog.Logger
}

// WithClock overrides the source of created_at and updated_at stamps and the
// reference point for CleanupOldSessions.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLockTimeout bounds how long a transaction waits for a conflicting lock
// before failing.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) { o.lockTimeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{
		now:         time.Now,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lockTimeout <= 0 {
		o.lockTimeout = DefaultLockTimeout
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
