package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type repoFactory func(t *testing.T, clock *testClock) repository.SessionRepository

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// wallTime carries nanoseconds, as time.Now does on Linux.
var wallTime = time.Date(2026, 3, 1, 9, 0, 0, 123456789, time.UTC)

// fixtureSession stamps times the way the orchestrator does.
func fixtureSession(id string) *interview.Session {
	s := interview.NewSession(id, "Ten years of Go services.", "Senior backend engineer", wallTime)
	s.State = interview.StateListening
	s.CurrentQuestion = "How do you design for failure?"
	s.Exchanges = append(s.Exchanges,
		interview.Exchange{
			Question:              "Tell me about yourself",
			Answer:                "I build distributed systems.",
			AnswerDurationSeconds: 14.25,
			Timestamp:             interview.StampTime(wallTime.Add(time.Minute + 987654321*time.Nanosecond)),
			Evaluation: &interview.Evaluation{
				TechnicalAccuracy: 7, Clarity: 8, Depth: 6, Completeness: 7,
				ImprovementTip: "Quantify impact.", PositiveNote: "Clear structure.",
			},
			Coaching: &interview.CoachingFeedback{
				VolumeStatus: "OK", PaceStatus: "STEADY", FillerCount: 2,
				WordsPerMinute: 132.5, PrimaryAlert: "", AlertLevel: interview.AlertLevelOK,
			},
		},
		interview.Exchange{
			Question:              "Describe a production incident",
			Answer:                "A cache stampede took down the API.",
			AnswerDurationSeconds: 31,
			Timestamp:             interview.StampTime(wallTime.Add(3 * time.Minute)),
			Coaching: &interview.CoachingFeedback{
				VolumeStatus: "TOO_QUIET", PaceStatus: "TOO_FAST", FillerCount: 4,
				WordsPerMinute: 181, PrimaryAlert: "Slow down", AlertLevel: interview.AlertLevelWarning,
			},
		},
		interview.Exchange{
			Question:  "Any questions for us?",
			Answer:    "",
			Timestamp: interview.StampTime(wallTime.Add(5*time.Minute + 999*time.Nanosecond)),
			Evaluation: &interview.Evaluation{
				TechnicalAccuracy: 1, Clarity: 1, Depth: 1, Completeness: 1,
			},
		},
	)
	s.RecomputeCounters()
	return s
}

func runRepositoryContract(t *testing.T, newRepo repoFactory) {
	ctx := context.Background()

	t.Run("round trip preserves every field", func(t *testing.T) {
		repo := newRepo(t, &testClock{now: baseTime})
		s := fixtureSession("rt-1")
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("completed session keeps ended at", func(t *testing.T) {
		repo := newRepo(t, &testClock{now: baseTime})
		s := fixtureSession("rt-2")
		ended := interview.StampTime(wallTime.Add(10*time.Minute + 456*time.Nanosecond))
		s.State = interview.StateComplete
		s.EndedAt = &ended
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("empty session round trips", func(t *testing.T) {
		repo := newRepo(t, &testClock{now: baseTime})
		s := interview.NewSession("rt-empty", "", "", wallTime)
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("load missing session is absent without error", func(t *testing.T) {
		repo := newRepo(t, &testClock{now: baseTime})
		got, err := repo.Load(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("re-save replaces exchanges instead of duplicating", func(t *testing.T) {
		repo := newRepo(t, &testClock{now: baseTime})
		s := fixtureSession("resave")
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.Save(ctx, s))

		st, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, st.TotalSessions)
		assert.Equal(t, 3, st.TotalExchanges)

		s.Exchanges = s.Exchanges[:1]
		s.CurrentQuestion = "Next one"
		s.RecomputeCounters()
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got)
		st, err = repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, st.TotalExchanges)
	})

	t.Run("immutable columns survive upsert", func(t *testing.T) {
		repo := newRepo(t, &testClock{now: baseTime})
		s := fixtureSession("immutable")
		require.NoError(t, repo.Save(ctx, s))

		changed := s.Clone()
		changed.ResumeText = "rewritten"
		changed.State = interview.StateEvaluating
		require.NoError(t, repo.Save(ctx, changed))

		got, err := repo.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ResumeText, got.ResumeText)
		assert.Equal(t, interview.StateEvaluating, got.State)
	})

	t.Run("delete removes session and children", func(t *testing.T) {
		repo := newRepo(t, &testClock{now: baseTime})
		require.NoError(t, repo.Save(ctx, fixtureSession("del-1")))
		require.NoError(t, repo.Save(ctx, fixtureSession("del-2")))

		deleted, err := repo.Delete(ctx, "del-1")
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err := repo.Load(ctx, "del-1")
		require.NoError(t, err)
		assert.Nil(t, got)

		deleted, err = repo.Delete(ctx, "del-1")
		require.NoError(t, err)
		assert.False(t, deleted)

		st, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, st.TotalSessions)
		assert.Equal(t, 3, st.TotalExchanges)
		assert.Positive(t, st.StorageSizeBytes)
	})

	t.Run("list is newest first", func(t *testing.T) {
		clock := &testClock{now: baseTime}
		repo := newRepo(t, clock)

		ids, err := repo.ListSessions(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)

		for _, id := range []string{"first", "second", "third"} {
			require.NoError(t, repo.Save(ctx, fixtureSession(id)))
			clock.Advance(time.Minute)
		}
		require.NoError(t, repo.Save(ctx, fixtureSession("first")))

		ids, err = repo.ListSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, ids)
	})

	t.Run("cleanup removes only sessions older than max age", func(t *testing.T) {
		clock := &testClock{now: baseTime}
		repo := newRepo(t, clock)

		require.NoError(t, repo.Save(ctx, fixtureSession("stale")))
		clock.Advance(24 * time.Hour)
		require.NoError(t, repo.Save(ctx, fixtureSession("fresh")))
		clock.Advance(time.Hour)

		n, err := repo.CleanupOldSessions(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := repo.Load(ctx, "stale")
		require.NoError(t, err)
		assert.Nil(t, got)
		got, err = repo.Load(ctx, "fresh")
		require.NoError(t, err)
		assert.NotNil(t, got)

		n, err = repo.CleanupOldSessions(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = repo.CleanupOldSessions(ctx, -time.Hour)
		assert.Error(t, err)
	})

	t.Run("save without id is rejected", func(t *testing.T) {
		repo := newRepo(t, &testClock{now: baseTime})
		assert.Error(t, repo.Save(ctx, &interview.Session{}))
		assert.Error(t, repo.Save(ctx, nil))
	})
}
