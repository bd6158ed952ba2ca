package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var sqliteMigrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		resume_text TEXT NOT NULL DEFAULT '',
		job_description TEXT NOT NULL DEFAULT '',
		current_question TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		ended_at TEXT,
		total_questions_asked INTEGER NOT NULL DEFAULT 0,
		total_filler_words INTEGER NOT NULL DEFAULT 0,
		average_wpm REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		answer_duration_seconds REAL NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exchange_id INTEGER NOT NULL REFERENCES exchanges(id) ON DELETE CASCADE,
		technical_accuracy INTEGER NOT NULL,
		clarity INTEGER NOT NULL,
		depth INTEGER NOT NULL,
		completeness INTEGER NOT NULL,
		improvement_tip TEXT NOT NULL DEFAULT '',
		positive_note TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS coaching_feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exchange_id INTEGER NOT NULL REFERENCES exchanges(id) ON DELETE CASCADE,
		volume_status TEXT NOT NULL DEFAULT '',
		pace_status TEXT NOT NULL DEFAULT '',
		filler_count INTEGER NOT NULL DEFAULT 0,
		words_per_minute REAL NOT NULL DEFAULT 0,
		primary_alert TEXT NOT NULL DEFAULT '',
		alert_level TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges (session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_evaluations_exchange ON evaluations (exchange_id)`,
	`CREATE INDEX IF NOT EXISTS idx_coaching_exchange ON coaching_feedback (exchange_id)`,
}

var postgresMigrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		resume_text TEXT NOT NULL DEFAULT '',
		job_description TEXT NOT NULL DEFAULT '',
		current_question TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		total_questions_asked INTEGER NOT NULL DEFAULT 0,
		total_filler_words INTEGER NOT NULL DEFAULT 0,
		average_wpm DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS exchanges (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		answer_duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		timestamp TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS evaluations (
		id BIGSERIAL PRIMARY KEY,
		exchange_id BIGINT NOT NULL REFERENCES exchanges(id) ON DELETE CASCADE,
		technical_accuracy INTEGER NOT NULL,
		clarity INTEGER NOT NULL,
		depth INTEGER NOT NULL,
		completeness INTEGER NOT NULL,
		improvement_tip TEXT NOT NULL DEFAULT '',
		positive_note TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS coaching_feedback (
		id BIGSERIAL PRIMARY KEY,
		exchange_id BIGINT NOT NULL REFERENCES exchanges(id) ON DELETE CASCADE,
		volume_status TEXT NOT NULL DEFAULT '',
		pace_status TEXT NOT NULL DEFAULT '',
		filler_count INTEGER NOT NULL DEFAULT 0,
		words_per_minute DOUBLE PRECISION NOT NULL DEFAULT 0,
		primary_alert TEXT NOT NULL DEFAULT '',
		alert_level TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges (session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_evaluations_exchange ON evaluations (exchange_id)`,
	`CREATE INDEX IF NOT EXISTS idx_coaching_exchange ON coaching_feedback (exchange_id)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range postgresMigrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

func RunSQLiteMigration(ctx context.Context, db *sql.DB) error {
	for _, s := range sqliteMigrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}
