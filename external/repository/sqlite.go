package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
)

// sqliteTimeLayout is fixed width so that text comparison on created_at
// orders the same way as the instants it encodes. Values are always UTC.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db   *sql.DB
	path string
	opts options
}

var _ repository.SessionRepository = (*SQLiteRepository)(nil)

// OpenSQLite opens (creating if needed) the database file at path in WAL
// mode and applies the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteRepository, error) {
	o := buildOptions(opts)
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(path, o.lockTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunSQLiteMigration(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return &SQLiteRepository{db: db, path: path, opts: o}, nil
}

func sqliteDSN(path string, lockTimeout time.Duration) string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprintf("%d", lockTimeout.Milliseconds()))
	q.Set("_journal_mode", "WAL")
	q.Set("_foreign_keys", "on")
	// Opaque form has no authority, so relative paths stay relative.
	escaped := (&url.URL{Path: filepath.ToSlash(path)}).EscapedPath()
	u := url.URL{Scheme: "file", Opaque: escaped, RawQuery: q.Encode()}
	return u.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *interview.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	now := formatTime(r.opts.now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save of session %s: %w", s.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var endedAt any
	if s.EndedAt != nil {
		endedAt = formatTime(*s.EndedAt)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, state, resume_text, job_description, current_question,
			started_at, ended_at, total_questions_asked, total_filler_words, average_wpm, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			current_question = excluded.current_question,
			ended_at = excluded.ended_at,
			total_questions_asked = excluded.total_questions_asked,
			total_filler_words = excluded.total_filler_words,
			average_wpm = excluded.average_wpm,
			updated_at = excluded.updated_at`,
		s.ID, string(s.State), s.ResumeText, s.JobDescription, s.CurrentQuestion,
		formatTime(s.StartedAt), endedAt, s.TotalQuestionsAsked, s.TotalFillerWords, s.AverageWPM, now, now,
	); err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", s.ID, err)
	}

	if err := sqliteDeleteExchanges(ctx, tx, s.ID); err != nil {
		return err
	}

	for i, ex := range s.Exchanges {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO exchanges (session_id, question, answer, answer_duration_seconds, timestamp, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, ex.Question, ex.Answer, ex.AnswerDurationSeconds, formatTime(ex.Timestamp), now)
		if err != nil {
			return fmt.Errorf("failed to insert exchange %d of session %s: %w", i, s.ID, err)
		}
		exchangeID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read exchange id: %w", err)
		}
		if ev := ex.Evaluation; ev != nil {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO evaluations (exchange_id, technical_accuracy, clarity, depth, completeness, improvement_tip, positive_note)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				exchangeID, ev.TechnicalAccuracy, ev.Clarity, ev.Depth, ev.Completeness, ev.ImprovementTip, ev.PositiveNote,
			); err != nil {
				return fmt.Errorf("failed to insert evaluation %d of session %s: %w", i, s.ID, err)
			}
		}
		if cf := ex.Coaching; cf != nil {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO coaching_feedback (exchange_id, volume_status, pace_status, filler_count, words_per_minute, primary_alert, alert_level)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				exchangeID, cf.VolumeStatus, cf.PaceStatus, cf.FillerCount, cf.WordsPerMinute, cf.PrimaryAlert, string(cf.AlertLevel),
			); err != nil {
				return fmt.Errorf("failed to insert coaching feedback %d of session %s: %w", i, s.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session %s: %w", s.ID, err)
	}
	r.opts.logger.Debug("saved session", "session_id", s.ID, "exchanges", len(s.Exchanges))
	return nil
}

func sqliteDeleteExchanges(ctx context.Context, tx *sql.Tx, sessionID string) error {
	for _, stmt := range []string{
		`DELETE FROM evaluations WHERE exchange_id IN (SELECT id FROM exchanges WHERE session_id = ?)`,
		`DELETE FROM coaching_feedback WHERE exchange_id IN (SELECT id FROM exchanges WHERE session_id = ?)`,
		`DELETE FROM exchanges WHERE session_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, sessionID); err != nil {
			return fmt.Errorf("failed to clear exchanges of session %s: %w", sessionID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context, sessionID string) (*interview.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin load of session %s: %w", sessionID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		s              interview.Session
		state, started string
		ended          sql.NullString
	)
	err = tx.QueryRowContext(ctx,
		`SELECT session_id, state, resume_text, job_description, current_question, started_at, ended_at,
			total_questions_asked, total_filler_words, average_wpm
		 FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&s.ID, &state, &s.ResumeText, &s.JobDescription, &s.CurrentQuestion, &started, &ended,
		&s.TotalQuestionsAsked, &s.TotalFillerWords, &s.AverageWPM)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	s.State = interview.State(state)
	if s.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if ended.Valid {
		t, err := parseTime(ended.String)
		if err != nil {
			return nil, err
		}
		s.EndedAt = &t
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT e.question, e.answer, e.answer_duration_seconds, e.timestamp,
			ev.id, ev.technical_accuracy, ev.clarity, ev.depth, ev.completeness, ev.improvement_tip, ev.positive_note,
			cf.id, cf.volume_status, cf.pace_status, cf.filler_count, cf.words_per_minute, cf.primary_alert, cf.alert_level
		 FROM exchanges e
		 LEFT JOIN evaluations ev ON ev.exchange_id = e.id
		 LEFT JOIN coaching_feedback cf ON cf.exchange_id = e.id
		 WHERE e.session_id = ?
		 ORDER BY e.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read exchanges of session %s: %w", sessionID, err)
	}
	defer rows.Close()

	s.Exchanges = []interview.Exchange{}
	for rows.Next() {
		var (
			ex        interview.Exchange
			timestamp string
			evID      sql.NullInt64
			tech      sql.NullInt64
			clarity   sql.NullInt64
			depth     sql.NullInt64
			complete  sql.NullInt64
			tip       sql.NullString
			note      sql.NullString
			cfID      sql.NullInt64
			volume    sql.NullString
			pace      sql.NullString
			fillers   sql.NullInt64
			wpm       sql.NullFloat64
			alert     sql.NullString
			level     sql.NullString
		)
		if err := rows.Scan(&ex.Question, &ex.Answer, &ex.AnswerDurationSeconds, &timestamp,
			&evID, &tech, &clarity, &depth, &complete, &tip, &note,
			&cfID, &volume, &pace, &fillers, &wpm, &alert, &level); err != nil {
			return nil, fmt.Errorf("failed to scan exchange of session %s: %w", sessionID, err)
		}
		if ex.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, err
		}
		if evID.Valid {
			ex.Evaluation = &interview.Evaluation{
				TechnicalAccuracy: int(tech.Int64),
				Clarity:           int(clarity.Int64),
				Depth:             int(depth.Int64),
				Completeness:      int(complete.Int64),
				ImprovementTip:    tip.String,
				PositiveNote:      note.String,
			}
		}
		if cfID.Valid {
			ex.Coaching = &interview.CoachingFeedback{
				VolumeStatus:   volume.String,
				PaceStatus:     pace.String,
				FillerCount:    int(fillers.Int64),
				WordsPerMinute: wpm.Float64,
				PrimaryAlert:   alert.String,
				AlertLevel:     interview.AlertLevel(level.String),
			}
		}
		s.Exchanges = append(s.Exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges of session %s: %w", sessionID, err)
	}
	return &s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, sessionID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin delete of session %s: %w", sessionID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := sqliteDeleteExchanges(ctx, tx, sessionID); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete of session %s: %w", sessionID, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]string, error) {
	return r.querySessionIDs(ctx,
		`SELECT session_id FROM sessions ORDER BY created_at DESC, session_id ASC`)
}

func (r *SQLiteRepository) querySessionIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) CleanupOldSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge < 0 {
		return 0, fmt.Errorf("max age must not be negative, got %s", maxAge)
	}
	cutoff := formatTime(r.opts.now().Add(-maxAge))
	ids, err := r.querySessionIDs(ctx,
		`SELECT session_id FROM sessions WHERE created_at < ? ORDER BY created_at ASC`, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		ok, err := r.Delete(ctx, id)
		if err != nil {
			return deleted, fmt.Errorf("failed to clean up session %s: %w", id, err)
		}
		if ok {
			deleted++
		}
	}
	if deleted > 0 {
		r.opts.logger.Info("cleaned up old sessions", "count", deleted, "max_age", maxAge.String())
	}
	return deleted, nil
}

func (r *SQLiteRepository) Stats(ctx context.Context) (repository.StorageStats, error) {
	var st repository.StorageStats
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return st, fmt.Errorf("failed to begin stats read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM exchanges),
			(SELECT page_count FROM pragma_page_count()) * (SELECT page_size FROM pragma_page_size())`,
	).Scan(&st.TotalSessions, &st.TotalExchanges, &st.StorageSizeBytes)
	if err != nil {
		return st, fmt.Errorf("failed to read storage stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return st, fmt.Errorf("failed to finish stats read: %w", err)
	}
	return st, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
