package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	repositoryimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/repository"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/cache"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/session"
)

func completedSession() *interview.Session {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := interview.NewSession("s-1", "resume", "job", start)
	s.Exchanges = append(s.Exchanges, interview.Exchange{
		Question:   "Why Go?",
		Answer:     "Simple concurrency.",
		Timestamp:  start.Add(time.Minute),
		Evaluation: &interview.Evaluation{TechnicalAccuracy: 8, Clarity: 8, Depth: 6, Completeness: 6},
	})
	s.RecomputeCounters()
	ended := start.Add(10 * time.Minute)
	s.EndedAt = &ended
	s.State = interview.StateComplete
	return s
}

func TestShowSessionFormats(t *testing.T) {
	s := completedSession()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	var text bytes.Buffer
	require.NoError(t, showSession(&text, s, outputText, "UTC", time.UTC, now))
	assert.Contains(t, text.String(), "State: COMPLETE")
	assert.Contains(t, text.String(), "Q1: Why Go?")
	assert.Contains(t, text.String(), "Duration: 00:10:00")

	var js bytes.Buffer
	require.NoError(t, showSession(&js, s, outputJSON, "UTC", time.UTC, now))
	var decoded interview.Session
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, s.ID, decoded.ID)
	assert.Len(t, decoded.Exchanges, 1)

	var ym bytes.Buffer
	require.NoError(t, showSession(&ym, s, outputYAML, "UTC", time.UTC, now))
	var summary interview.Summary
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &summary))
	assert.Equal(t, "s-1", summary.SessionID)
	assert.InDelta(t, 7.0, summary.AverageScore, 1e-9)
	assert.InDelta(t, 600.0, summary.DurationSeconds, 1e-9)

	assert.Error(t, showSession(io.Discard, s, "xml", "UTC", time.UTC, now))
}

func TestReportLocation(t *testing.T) {
	loc, err := reportLocation("Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	_, err = reportLocation("Mars/Olympus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid report timezone "Mars/Olympus"`)
}

func TestWriteStats(t *testing.T) {
	st := storeStats{
		Durable: repository.StorageStats{TotalSessions: 3, TotalExchanges: 9, StorageSizeBytes: 4096},
		Fast:    cache.Stats{Backend: "memory", TTL: 2 * time.Hour, LocalSessions: 1, TotalActive: 1},
	}

	var text bytes.Buffer
	require.NoError(t, writeStats(&text, st, outputText))
	assert.Contains(t, text.String(), "Stored sessions:  3")
	assert.Contains(t, text.String(), "memory (ttl 2h0m0s)")

	var ym bytes.Buffer
	require.NoError(t, writeStats(&ym, st, outputYAML))
	assert.Contains(t, ym.String(), "total_exchanges: 9")

	var js bytes.Buffer
	require.NoError(t, writeStats(&js, st, outputJSON))
	assert.Contains(t, js.String(), `"storage_size_bytes": 4096`)
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := repositoryimpl.OpenSQLite(ctx, filepath.Join(t.TempDir(), "s.db"), repositoryimpl.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	fast, err := cache.New(ctx, nil, cache.WithLogger(logger))
	require.NoError(t, err)
	store := session.NewSnapshotStore(fast, repo, logger)

	var empty bytes.Buffer
	require.NoError(t, listSessions(ctx, store, &empty))
	assert.Equal(t, "No sessions found.\n", empty.String())

	require.NoError(t, store.Save(ctx, completedSession()))
	require.NoError(t, repo.Save(ctx, interview.NewSession("stored-only", "", "", time.Now().UTC())))
	require.NoError(t, fast.Put(ctx, "cached-only", interview.NewSession("cached-only", "", "", time.Now().UTC())))

	var out bytes.Buffer
	require.NoError(t, listSessions(ctx, store, &out))
	assert.Contains(t, out.String(), "s-1\tactive\n")
	assert.Contains(t, out.String(), "stored-only\n")
	assert.NotContains(t, out.String(), "stored-only\tactive")
	assert.Contains(t, out.String(), "cached-only\tactive (not stored)\n")
}
