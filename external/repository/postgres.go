package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
	opts options
}

var _ repository.SessionRepository = (*PostgresRepository)(nil)

func NewPostgresRepository(pool *pgxpool.Pool, opts ...Option) *PostgresRepository {
	return &PostgresRepository{pool: pool, opts: buildOptions(opts)}
}

// begin opens a transaction whose lock waits are bounded by the configured
// lock timeout.
func (r *PostgresRepository) begin(ctx context.Context, mode pgx.TxAccessMode) (pgx.Tx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: mode})
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.opts.lockTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	return tx, nil
}

func (r *PostgresRepository) Save(ctx context.Context, s *interview.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	now := r.opts.now().UTC()

	tx, err := r.begin(ctx, pgx.ReadWrite)
	if err != nil {
		return fmt.Errorf("failed to begin save of session %s: %w", s.ID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (session_id, state, resume_text, job_description, current_question,
			started_at, ended_at, total_questions_asked, total_filler_words, average_wpm, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		 ON CONFLICT (session_id) DO UPDATE SET
			state = EXCLUDED.state,
			current_question = EXCLUDED.current_question,
			ended_at = EXCLUDED.ended_at,
			total_questions_asked = EXCLUDED.total_questions_asked,
			total_filler_words = EXCLUDED.total_filler_words,
			average_wpm = EXCLUDED.average_wpm,
			updated_at = EXCLUDED.updated_at`,
		s.ID, string(s.State), s.ResumeText, s.JobDescription, s.CurrentQuestion,
		s.StartedAt.UTC(), utcPtr(s.EndedAt), s.TotalQuestionsAsked, s.TotalFillerWords, s.AverageWPM, now,
	); err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", s.ID, err)
	}

	if err := postgresDeleteExchanges(ctx, tx, s.ID); err != nil {
		return err
	}

	for i, ex := range s.Exchanges {
		var exchangeID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO exchanges (session_id, question, answer, answer_duration_seconds, timestamp, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			s.ID, ex.Question, ex.Answer, ex.AnswerDurationSeconds, ex.Timestamp.UTC(), now,
		).Scan(&exchangeID); err != nil {
			return fmt.Errorf("failed to insert exchange %d of session %s: %w", i, s.ID, err)
		}
		if ev := ex.Evaluation; ev != nil {
			if _, err := tx.Exec(ctx,
				`INSERT INTO evaluations (exchange_id, technical_accuracy, clarity, depth, completeness, improvement_tip, positive_note)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				exchangeID, ev.TechnicalAccuracy, ev.Clarity, ev.Depth, ev.Completeness, ev.ImprovementTip, ev.PositiveNote,
			); err != nil {
				return fmt.Errorf("failed to insert evaluation %d of session %s: %w", i, s.ID, err)
			}
		}
		if cf := ex.Coaching; cf != nil {
			if _, err := tx.Exec(ctx,
				`INSERT INTO coaching_feedback (exchange_id, volume_status, pace_status, filler_count, words_per_minute, primary_alert, alert_level)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				exchangeID, cf.VolumeStatus, cf.PaceStatus, cf.FillerCount, cf.WordsPerMinute, cf.PrimaryAlert, string(cf.AlertLevel),
			); err != nil {
				return fmt.Errorf("failed to insert coaching feedback %d of session %s: %w", i, s.ID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session %s: %w", s.ID, err)
	}
	r.opts.logger.Debug("saved session", "session_id", s.ID, "exchanges", len(s.Exchanges))
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func postgresDeleteExchanges(ctx context.Context, tx pgx.Tx, sessionID string) error {
	for _, stmt := range []string{
		`DELETE FROM evaluations WHERE exchange_id IN (SELECT id FROM exchanges WHERE session_id = $1)`,
		`DELETE FROM coaching_feedback WHERE exchange_id IN (SELECT id FROM exchanges WHERE session_id = $1)`,
		`DELETE FROM exchanges WHERE session_id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, sessionID); err != nil {
			return fmt.Errorf("failed to clear exchanges of session %s: %w", sessionID, err)
		}
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context, sessionID string) (*interview.Session, error) {
	tx, err := r.begin(ctx, pgx.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to begin load of session %s: %w", sessionID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		s       interview.Session
		state   string
		endedAt *time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT session_id, state, resume_text, job_description, current_question, started_at, ended_at,
			total_questions_asked, total_filler_words, average_wpm
		 FROM sessions WHERE session_id = $1`, sessionID,
	).Scan(&s.ID, &state, &s.ResumeText, &s.JobDescription, &s.CurrentQuestion, &s.StartedAt, &endedAt,
		&s.TotalQuestionsAsked, &s.TotalFillerWords, &s.AverageWPM)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	s.State = interview.State(state)
	s.StartedAt = s.StartedAt.UTC()
	s.EndedAt = utcPtr(endedAt)

	rows, err := tx.Query(ctx,
		`SELECT e.question, e.answer, e.answer_duration_seconds, e.timestamp,
			ev.id, ev.technical_accuracy, ev.clarity, ev.depth, ev.completeness, ev.improvement_tip, ev.positive_note,
			cf.id, cf.volume_status, cf.pace_status, cf.filler_count, cf.words_per_minute, cf.primary_alert, cf.alert_level
		 FROM exchanges e
		 LEFT JOIN evaluations ev ON ev.exchange_id = e.id
		 LEFT JOIN coaching_feedback cf ON cf.exchange_id = e.id
		 WHERE e.session_id = $1
		 ORDER BY e.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read exchanges of session %s: %w", sessionID, err)
	}
	defer rows.Close()

	s.Exchanges = []interview.Exchange{}
	for rows.Next() {
		var (
			ex                             interview.Exchange
			evID, cfID                     *int64
			tech, clarity, depth, complete *int
			tip, note                      *string
			volume, pace, alert, level     *string
			fillers                        *int
			wpm                            *float64
		)
		if err := rows.Scan(&ex.Question, &ex.Answer, &ex.AnswerDurationSeconds, &ex.Timestamp,
			&evID, &tech, &clarity, &depth, &complete, &tip, &note,
			&cfID, &volume, &pace, &fillers, &wpm, &alert, &level); err != nil {
			return nil, fmt.Errorf("failed to scan exchange of session %s: %w", sessionID, err)
		}
		ex.Timestamp = ex.Timestamp.UTC()
		if evID != nil {
			ex.Evaluation = &interview.Evaluation{
				TechnicalAccuracy: deref(tech),
				Clarity:           deref(clarity),
				Depth:             deref(depth),
				Completeness:      deref(complete),
				ImprovementTip:    deref(tip),
				PositiveNote:      deref(note),
			}
		}
		if cfID != nil {
			ex.Coaching = &interview.CoachingFeedback{
				VolumeStatus:   deref(volume),
				PaceStatus:     deref(pace),
				FillerCount:    deref(fillers),
				WordsPerMinute: deref(wpm),
				PrimaryAlert:   deref(alert),
				AlertLevel:     interview.AlertLevel(deref(level)),
			}
		}
		s.Exchanges = append(s.Exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges of session %s: %w", sessionID, err)
	}
	return &s, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r *PostgresRepository) Delete(ctx context.Context, sessionID string) (bool, error) {
	tx, err := r.begin(ctx, pgx.ReadWrite)
	if err != nil {
		return false, fmt.Errorf("failed to begin delete of session %s: %w", sessionID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := postgresDeleteExchanges(ctx, tx, sessionID); err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit delete of session %s: %w", sessionID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) ListSessions(ctx context.Context) ([]string, error) {
	return r.querySessionIDs(ctx,
		`SELECT session_id FROM sessions ORDER BY created_at DESC, session_id ASC`)
}

func (r *PostgresRepository) querySessionIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan session ids: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (r *PostgresRepository) CleanupOldSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge < 0 {
		return 0, fmt.Errorf("max age must not be negative, got %s", maxAge)
	}
	cutoff := r.opts.now().Add(-maxAge).UTC()
	ids, err := r.querySessionIDs(ctx,
		`SELECT session_id FROM sessions WHERE created_at < $1 ORDER BY created_at ASC`, cutoff)
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

func (r *PostgresRepository) Stats(ctx context.Context) (repository.StorageStats, error) {
	var st repository.StorageStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM exchanges),
			pg_total_relation_size('sessions'::regclass)
				+ pg_total_relation_size('exchanges'::regclass)
				+ pg_total_relation_size('evaluations'::regclass)
				+ pg_total_relation_size('coaching_feedback'::regclass)`,
	).Scan(&st.TotalSessions, &st.TotalExchanges, &st.StorageSizeBytes)
	if err != nil {
		return st, fmt.Errorf("failed to read storage stats: %w", err)
	}
	return st, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
