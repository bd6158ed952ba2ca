package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audioimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/audio"
	coachimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/coach"
	repositoryimpl "github.com/adityatawde9699/System-32---Inter-View-AI/external/repository"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/cache"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/coach"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interviewer"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/session"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/webhook"
)

type scriptedInterviewer struct {
	mu       sync.Mutex
	openings int
	nexts    int
}

func (s *scriptedInterviewer) OpeningQuestion(_ context.Context, resumeText, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openings++
	return "Opening question about " + strings.TrimSpace(resumeText), nil
}

func (s *scriptedInterviewer) NextQuestion(_ context.Context, h interviewer.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nexts++
	return fmt.Sprintf("Follow-up after %d answers", len(h.Exchanges)), nil
}

func (s *scriptedInterviewer) Evaluate(_ context.Context, _, answer string, _ interviewer.Context) (*interview.Evaluation, error) {
	return &interview.Evaluation{
		TechnicalAccuracy: 7, Clarity: 8, Depth: 6, Completeness: 7,
		ImprovementTip: "Mention trade-offs for " + answer,
	}, nil
}

type scriptedTranscriber struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *scriptedTranscriber) Transcribe(_ context.Context, _ []byte, _ int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("answer %d", s.calls), nil
}

type cannedSynthesizer struct{}

func (cannedSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	return []byte("mp3:" + text), nil
}

type recordingSender struct {
	payloads []webhook.SummaryPayload
}

func (r *recordingSender) SendSummary(_ context.Context, p webhook.SummaryPayload) error {
	r.payloads = append(r.payloads, p)
	return nil
}

type rehearsalFixture struct {
	r           *rehearsal
	repo        repository.SessionRepository
	fast        *cache.FastStore
	interviewer *scriptedInterviewer
	transcriber *scriptedTranscriber
	sender      *recordingSender
	dir         string
}

func newRehearsalFixture(t *testing.T) *rehearsalFixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	repo, err := repositoryimpl.OpenSQLite(ctx, filepath.Join(dir, "sessions.db"), repositoryimpl.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	fast, err := cache.New(ctx, nil, cache.WithLogger(logger))
	require.NoError(t, err)

	iv := &scriptedInterviewer{}
	stt := &scriptedTranscriber{}
	sender := &recordingSender{}
	factory := session.NewFactory(iv, iv, stt,
		coach.Factory(func() coach.Coach { return coachimpl.NewPCMCoach() }),
		cannedSynthesizer{}, logger)

	ids := 0
	return &rehearsalFixture{
		r: &rehearsal{
			factory:  factory,
			store:    session.NewSnapshotStore(fast, repo, logger),
			decoder:  audioimpl.NewFileDecoder(),
			sender:   sender,
			logger:   logger,
			timezone: "UTC",
			loc:      time.UTC,
			audioExt: "mp3",
			opts: []session.Option{session.WithIDGenerator(func() string {
				ids++
				return fmt.Sprintf("rehearsal-%d", ids)
			})},
		},
		repo:        repo,
		fast:        fast,
		interviewer: iv,
		transcriber: stt,
		sender:      sender,
		dir:         dir,
	}
}

// writeAnswerWAV writes two seconds of a voiced tone as 16 kHz mono WAV.
func (f *rehearsalFixture) writeAnswerWAV(t *testing.T, name string) string {
	t.Helper()
	const rate = 16000
	var data bytes.Buffer
	for i := 0; i < rate*2; i++ {
		v := int16(0.3 * 32767 * math.Sin(2*math.Pi*440*float64(i)/rate))
		_ = binary.Write(&data, binary.LittleEndian, v)
	}
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVEfmt ")
	for _, v := range []any{uint32(16), uint16(1), uint16(1), uint32(rate), uint32(rate * 2), uint16(2), uint16(16)} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestRehearsal_FullRun(t *testing.T) {
	f := newRehearsalFixture(t)
	ctx := context.Background()
	f.r.audioOut = filepath.Join(f.dir, "questions")
	in := rehearsalInput{
		resumeText:     "Go developer",
		jobDescription: "Backend role",
		answers:        []string{f.writeAnswerWAV(t, "a1.wav"), f.writeAnswerWAV(t, "a2.wav")},
	}

	var out bytes.Buffer
	summary, err := f.r.run(ctx, in, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalQuestions)
	assert.Equal(t, 2, summary.EvaluatedAnswerCount)
	assert.InDelta(t, 7.0, summary.AverageScore, 1e-9)

	text := out.String()
	assert.Contains(t, text, "Session rehearsal-1")
	assert.Contains(t, text, "Q1: Opening question about Go developer")
	assert.Contains(t, text, "A1: answer 1")
	assert.Contains(t, text, "Q2: Follow-up after 1 answers")
	assert.Contains(t, text, "Questions: 2 (evaluated 2)")
	assert.Equal(t, 1, f.interviewer.openings)
	assert.Equal(t, 1, f.interviewer.nexts)

	stored, err := f.repo.Load(ctx, "rehearsal-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, interview.StateComplete, stored.State)
	assert.NotNil(t, stored.EndedAt)
	require.Len(t, stored.Exchanges, 2)
	assert.InDelta(t, 2.0, stored.Exchanges[0].AnswerDurationSeconds, 1e-9)
	require.NotNil(t, stored.Exchanges[0].Coaching)

	cached, ok := f.fast.Get(ctx, "rehearsal-1")
	require.True(t, ok)
	assert.Equal(t, interview.StateComplete, cached.State)

	require.Len(t, f.sender.payloads, 1)
	assert.Equal(t, "rehearsal-1", f.sender.payloads[0].SessionID)
	assert.Equal(t, 2, f.sender.payloads[0].TotalQuestions)

	spoken, err := os.ReadFile(filepath.Join(f.r.audioOut, "rehearsal-1-q02.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "mp3:Follow-up after 1 answers", string(spoken))
}

func TestRehearsal_FailedAnswerCanBeContinued(t *testing.T) {
	f := newRehearsalFixture(t)
	ctx := context.Background()
	answer := f.writeAnswerWAV(t, "a1.wav")

	f.transcriber.err = errors.New("speech quota exceeded")
	_, err := f.r.run(ctx, rehearsalInput{resumeText: "r", jobDescription: "j", answers: []string{answer}}, io.Discard)
	require.Error(t, err)

	stored, err := f.repo.Load(ctx, "rehearsal-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, interview.StateListening, stored.State)
	assert.Equal(t, "Opening question about r", stored.CurrentQuestion)
	assert.Empty(t, stored.Exchanges)

	f.transcriber.err = nil
	var out bytes.Buffer
	summary, err := f.r.run(ctx, rehearsalInput{sessionID: "rehearsal-1", answers: []string{answer}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalQuestions)
	assert.Equal(t, 1, f.interviewer.openings, "pending question is reused")
	assert.Contains(t, out.String(), "Q1: Opening question about r")
}

func TestRehearsal_UnknownSessionAndBadAudio(t *testing.T) {
	f := newRehearsalFixture(t)
	ctx := context.Background()

	_, err := f.r.run(ctx, rehearsalInput{sessionID: "missing", answers: []string{"x.wav"}}, io.Discard)
	assert.ErrorContains(t, err, "not found")

	bad := filepath.Join(f.dir, "bad.mp3")
	require.NoError(t, os.WriteFile(bad, []byte("ID3 not a wav"), 0o644))
	_, err = f.r.run(ctx, rehearsalInput{resumeText: "r", jobDescription: "j", answers: []string{bad}}, io.Discard)
	require.Error(t, err)
	assert.Zero(t, f.transcriber.calls)
}
