package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/maintenance"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire stale sessions until interrupted",
		Long: `Run the maintenance loop: sweep expired fast-store entries and delete stored
sessions older than SESSION_RETENTION, once at startup and then every
CLEANUP_INTERVAL, until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()
			return runSweep(cmd.Context(), a)
		},
	}
}

func runSweep(ctx context.Context, a *app) error {
	repo, err := a.repository()
	if err != nil {
		return err
	}
	c, err := a.cache()
	if err != nil {
		return err
	}
	sweeper := &maintenance.Sweeper{
		Cache:      c,
		Repository: repo,
		Retention:  a.cfg.SessionRetention,
		Interval:   a.cfg.CleanupInterval,
		Logger:     a.logger,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("sweeper started", "interval", a.cfg.CleanupInterval.String(), "retention", a.cfg.SessionRetention.String())
		sweeper.Run(gctx)
		return nil
	})
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			a.logger.Info("shutting down", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	return g.Wait()
}
