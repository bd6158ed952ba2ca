package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/cache"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/maintenance"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/session"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage stored interview sessions",
	}
	cmd.AddCommand(
		newSessionsListCmd(),
		newSessionsShowCmd(),
		newSessionsDeleteCmd(),
		newSessionsStatsCmd(),
		newSessionsCleanupCmd(),
	)
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		Long:  `List stored session ids, newest first. Sessions that also have a live fast-store snapshot are marked "active".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()
			store, err := a.snapshots()
			if err != nil {
				return err
			}
			return listSessions(cmd.Context(), store, cmd.OutOrStdout())
		},
	}
}

func listSessions(ctx context.Context, store *session.SnapshotStore, w io.Writer) error {
	stored, err := store.ListStored(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	active := store.ListActive(ctx)
	if len(stored) == 0 && len(active) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	for _, id := range stored {
		mark := ""
		if slices.Contains(active, id) {
			mark = "\tactive"
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", id, mark); err != nil {
			return err
		}
	}
	// Active sessions whose first durable save has not landed yet.
	for _, id := range active {
		if slices.Contains(stored, id) {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\tactive (not stored)\n", id); err != nil {
			return err
		}
	}
	return nil
}

func newSessionsShowCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session",
		Long: `Show one session. The text output is the interview report, json is the full
snapshot and yaml is the session summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()
			store, err := a.snapshots()
			if err != nil {
				return err
			}
			s, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load session: %w", err)
			}
			if s == nil {
				return fmt.Errorf("session %s not found", args[0])
			}
			loc, err := reportLocation(a.cfg.ReportTimezone)
			if err != nil {
				return err
			}
			return showSession(cmd.OutOrStdout(), s, output, a.cfg.ReportTimezone, loc, time.Now())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")
	return cmd
}

func showSession(w io.Writer, s *interview.Session, output, timezone string, loc *time.Location, now time.Time) error {
	summary := interview.Summarize(s, now.UTC())
	switch output {
	case outputText:
		_, err := fmt.Fprintf(w, "State: %s\n%s\n", s.State, session.BuildReport(s, summary, timezone, loc))
		return err
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case outputYAML:
		return writeYAML(w, summary)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session from both stores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()
			store, err := a.snapshots()
			if err != nil {
				return err
			}
			deleted, err := store.Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
			if !deleted {
				return fmt.Errorf("session %s not found", args[0])
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return err
		},
	}
}

type storeStats struct {
	Durable repository.StorageStats `json:"durable" yaml:"durable"`
	Fast    cache.Stats             `json:"fast" yaml:"fast"`
}

func newSessionsStatsCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show storage statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()
			repo, err := a.repository()
			if err != nil {
				return err
			}
			c, err := a.cache()
			if err != nil {
				return err
			}
			durable, err := repo.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read storage stats: %w", err)
			}
			return writeStats(cmd.OutOrStdout(), storeStats{Durable: durable, Fast: c.Stats(cmd.Context())}, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")
	return cmd
}

func writeStats(w io.Writer, st storeStats, output string) error {
	switch output {
	case outputText:
		_, err := fmt.Fprintf(w,
			"Stored sessions:  %d\nStored exchanges: %d\nStorage size:     %d bytes\nFast store:       %s (ttl %s)\nActive sessions:  %d (shared %d, local %d)\n",
			st.Durable.TotalSessions, st.Durable.TotalExchanges, st.Durable.StorageSizeBytes,
			st.Fast.Backend, st.Fast.TTL, st.Fast.TotalActive, st.Fast.SharedSessions, st.Fast.LocalSessions)
		return err
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case outputYAML:
		return writeYAML(w, st)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func newSessionsCleanupCmd() *cobra.Command {
	var maxAge time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete sessions older than --max-age and sweep expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()
			if !cmd.Flags().Changed("max-age") {
				maxAge = a.cfg.SessionRetention
			}
			if maxAge <= 0 {
				return fmt.Errorf("--max-age must be positive, got %s", maxAge)
			}
			repo, err := a.repository()
			if err != nil {
				return err
			}
			c, err := a.cache()
			if err != nil {
				return err
			}
			r := (&maintenance.Sweeper{Cache: c, Repository: repo, Retention: maxAge, Logger: a.logger}).RunOnce(cmd.Context())
			if r.Err != nil {
				return fmt.Errorf("failed to clean up sessions: %w", r.Err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d stored sessions older than %s, expired %d cached\n", r.DeletedStored, maxAge, r.ExpiredCached)
			return err
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Age after which stored sessions are deleted (default SESSION_RETENTION)")
	return cmd
}

func reportLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone %q: %w", name, err)
	}
	return loc, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
