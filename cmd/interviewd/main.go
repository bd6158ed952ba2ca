package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	audioimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/audio"
	cacheimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/cache"
	coachimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/coach"
	configloader "github.com/adityatawde9699/System-32---Inter-View-AI/external/config"
	interviewerimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/interviewer"
	repositoryimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/repository"
	synthesizerimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/synthesizer"
	transcriberimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/transcriber"
	webhookimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/webhook"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/cache"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/config"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "interviewd",
		Short:        "Interview practice session service",
		Long:         `interviewd runs mock interview sessions and maintains their cached and stored snapshots.`,
		SilenceUsage: true,
	}
	root.AddCommand(newSweepCmd(), newSessionsCmd(), newRehearseCmd())
	return root
}

// app is the per-command runtime: configuration, root logger and the
// dependency graph built from them.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	injector do.Injector
	closers  []func() error
}

func loadApp() (*app, error) {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		return nil, err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Debug("startup: configuration loaded", "env", cfg.Env)
	return &app{cfg: cfg, logger: logger, injector: setupDI(cfg, logger)}, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// setupDI registers every provider. Providers are lazy, so commands that
// never touch a collaborator never need its credentials.
func setupDI(cfg *config.Config, logger *slog.Logger) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	cacheimpl.RegisterDI(injector)
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	coachimpl.RegisterDI(injector)
	interviewerimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	synthesizerimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	session.RegisterDI(injector)

	return injector
}

func (a *app) repository() (repository.SessionRepository, error) {
	repo, err := do.Invoke[repository.SessionRepository](a.injector)
	if err != nil {
		return nil, fmt.Errorf("failed to open session repository: %w", err)
	}
	a.closers = append(a.closers, repo.Close)
	return repo, nil
}

func (a *app) cache() (cache.Cache, error) {
	c, err := do.Invoke[cache.Cache](a.injector)
	if err != nil {
		return nil, err
	}
	if closer, ok := c.(io.Closer); ok {
		a.closers = append(a.closers, closer.Close)
	}
	return c, nil
}

func (a *app) snapshots() (*session.SnapshotStore, error) {
	if _, err := a.repository(); err != nil {
		return nil, err
	}
	if _, err := a.cache(); err != nil {
		return nil, err
	}
	return do.Invoke[*session.SnapshotStore](a.injector)
}

// close releases resolved resources in reverse order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("failed to release resource", "error", err)
		}
	}
	a.closers = nil
}
