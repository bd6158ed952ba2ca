package interview

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]State{
		{StateIdle, StateIntro},
		{StateIntro, StateListening},
		{StateListening, StateEvaluating},
		{StateEvaluating, StateListening},
		{StateEvaluating, StateComplete},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	forbidden := [][2]State{
		{StateIntro, StateIdle},
		{StateEvaluating, StateIntro},
		{StateComplete, StateListening},
		{StateComplete, StateIntro},
		{StateIdle, StateEvaluating},
	}
	for _, tr := range forbidden {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestAlertLevelSeverity(t *testing.T) {
	assert.Less(t, AlertLevelOK.Severity(), AlertLevelWarning.Severity())
	assert.Less(t, AlertLevelWarning.Severity(), AlertLevelCritical.Severity())
	assert.Equal(t, -1, AlertLevel("bogus").Severity())
}

func TestSessionClone_IsIndependent(t *testing.T) {
	ended := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &Session{
		ID:      "s-1",
		State:   StateComplete,
		EndedAt: &ended,
		Exchanges: []Exchange{{
			Question:   "q",
			Evaluation: &Evaluation{TechnicalAccuracy: 5},
			Coaching:   &CoachingFeedback{FillerCount: 1},
		}},
	}

	c := s.Clone()
	require.Equal(t, s, c)

	c.Exchanges[0].Evaluation.TechnicalAccuracy = 9
	c.Exchanges[0].Coaching.FillerCount = 7
	*c.EndedAt = ended.Add(time.Hour)
	c.Exchanges = append(c.Exchanges, Exchange{Question: "extra"})

	assert.Equal(t, 5, s.Exchanges[0].Evaluation.TechnicalAccuracy)
	assert.Equal(t, 1, s.Exchanges[0].Coaching.FillerCount)
	assert.Equal(t, ended, *s.EndedAt)
	assert.Len(t, s.Exchanges, 1)
}

func TestRecomputeCounters(t *testing.T) {
	s := &Session{Exchanges: []Exchange{
		{Coaching: &CoachingFeedback{FillerCount: 2, WordsPerMinute: 120}},
		{Coaching: &CoachingFeedback{FillerCount: 3, WordsPerMinute: 140}},
		{},
	}}
	s.RecomputeCounters()

	assert.Equal(t, 3, s.TotalQuestionsAsked)
	assert.Equal(t, 5, s.TotalFillerWords)
	assert.InDelta(t, 130.0, s.AverageWPM, 1e-9)
}

func TestSummarize(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	s := &Session{
		ID:        "s-1",
		StartedAt: start,
		EndedAt:   &end,
		Exchanges: []Exchange{
			{Evaluation: &Evaluation{TechnicalAccuracy: 8, Clarity: 8, Depth: 6, Completeness: 6}},
			{Evaluation: &Evaluation{TechnicalAccuracy: 4, Clarity: 6, Depth: 4, Completeness: 6}},
			{},
		},
	}

	sum := Summarize(s, end.Add(time.Hour))
	assert.Equal(t, 3, sum.TotalQuestions)
	assert.Equal(t, 2, sum.EvaluatedAnswerCount)
	assert.InDelta(t, 6.0, sum.AverageScore, 1e-9)
	assert.InDelta(t, 6.0, sum.AverageTechnical, 1e-9)
	assert.InDelta(t, 7.0, sum.AverageClarity, 1e-9)
	assert.InDelta(t, 90.0, sum.DurationSeconds, 1e-9)
}

func TestEvaluationValidate(t *testing.T) {
	ok := &Evaluation{TechnicalAccuracy: 1, Clarity: 10, Depth: 5, Completeness: 5}
	require.NoError(t, ok.Validate())

	bad := &Evaluation{TechnicalAccuracy: 0, Clarity: 10, Depth: 5, Completeness: 5}
	require.Error(t, bad.Validate())

	assert.Equal(t, MinScore, ClampScore(-3))
	assert.Equal(t, MaxScore, ClampScore(42))
	assert.Equal(t, 7, ClampScore(7))
}

func TestSessionStateError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewSessionStateError("process answer", StateIdle, ErrNoActiveSession))

	assert.True(t, errors.Is(err, ErrSessionState))
	assert.True(t, errors.Is(err, ErrNoActiveSession))
	assert.False(t, errors.Is(err, ErrSessionEnded))

	var stateErr *SessionStateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, StateIdle, stateErr.State)
}

func TestStatsIsEmpty(t *testing.T) {
	assert.True(t, Stats{}.IsEmpty())
	assert.False(t, Stats{SessionID: "x"}.IsEmpty())
}
