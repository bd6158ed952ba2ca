package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/config"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (repository.SessionRepository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		opts := []Option{WithLockTimeout(cfg.DatabaseLockTimeout), WithLogger(logger)}
		if cfg.UsesPostgres() {
			return openPostgres(ctx, cfg.DatabaseURL, opts...)
		}
		repo, err := OpenSQLite(ctx, sqlitePath(cfg.DatabaseURL), opts...)
		if err != nil {
			return nil, err
		}
		return repo, nil
	})
}

func openPostgres(ctx context.Context, url string, opts ...Option) (*PostgresRepository, error) {
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigration(ctx, p); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return NewPostgresRepository(p, opts...), nil
}

func sqlitePath(databaseURL string) string {
	return strings.TrimPrefix(databaseURL, "sqlite://")
}
