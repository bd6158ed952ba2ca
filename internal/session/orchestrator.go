package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/coach"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interviewer"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/synthesizer"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/transcriber"
)

// Collaborators are the external services an Orchestrator drives.
type Collaborators struct {
	Questions   interviewer.QuestionGenerator
	Evaluator   interviewer.Evaluator
	Transcriber transcriber.Transcriber
	Coach       coach.Coach
	Synthesizer synthesizer.Synthesizer
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// Orchestrator drives a single interview session through its states. It is
// not safe for concurrent use; callers run one per active session and persist
// snapshots of Session() between steps.
type Orchestrator struct {
	questions   interviewer.QuestionGenerator
	evaluator   interviewer.Evaluator
	transcriber transcriber.Transcriber
	coach       coach.Coach
	synthesizer synthesizer.Synthesizer
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string

	session *interview.Session

	onStateChange func(interview.State)
	onQuestion    func(string)
	onFeedback    func(*interview.CoachingFeedback)
}

func NewOrchestrator(c Collaborators, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		questions:   c.Questions,
		evaluator:   c.Evaluator,
		transcriber: c.Transcriber,
		coach:       c.Coach,
		synthesizer: c.Synthesizer,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

func (o *Orchestrator) SetOnStateChange(fn func(interview.State)) {
	o.onStateChange = fn
}

func (o *Orchestrator) SetOnQuestion(fn func(string)) {
	o.onQuestion = fn
}

func (o *Orchestrator) SetOnFeedback(fn func(*interview.CoachingFeedback)) {
	o.onFeedback = fn
}

// State is IDLE while no session is held.
func (o *Orchestrator) State() interview.State {
	if o.session == nil {
		return interview.StateIdle
	}
	return o.session.State
}

// Session returns the live session, or nil. Callers that hand it to another
// goroutine or a store should Clone it first.
func (o *Orchestrator) Session() *interview.Session {
	return o.session
}

func (o *Orchestrator) StartSession(ctx context.Context, resumeText, jobDescription string) (string, error) {
	if o.session != nil {
		return "", interview.NewSessionStateError("start session", o.session.State, interview.ErrSessionActive)
	}
	o.session = interview.NewSession(o.newID(), resumeText, jobDescription, o.now())
	if o.coach != nil {
		o.coach.Reset()
	}
	o.logger.InfoContext(ctx, "interview session started", "session_id", o.session.ID)
	o.notifyState()
	return o.session.ID, nil
}

// Resume adopts a session loaded from a store, for example after a worker
// restart. No collaborator is called.
func (o *Orchestrator) Resume(s *interview.Session) error {
	if o.session != nil {
		return interview.NewSessionStateError("resume session", o.session.State, interview.ErrSessionActive)
	}
	if s == nil || !s.State.Valid() || s.State == interview.StateIdle {
		return fmt.Errorf("resume session: invalid snapshot")
	}
	o.session = s
	o.logger.Info("interview session resumed", "session_id", s.ID, "state", string(s.State), "exchanges", len(s.Exchanges))
	return nil
}

func (o *Orchestrator) GetNextQuestion(ctx context.Context) (string, error) {
	const op = "get next question"
	if err := o.requireOpen(op); err != nil {
		return "", err
	}
	s := o.session
	if !interview.CanTransition(s.State, interview.StateListening) {
		return "", interview.NewSessionStateError(op, s.State, interview.ErrInvalidTransition)
	}

	var (
		question string
		err      error
	)
	if len(s.Exchanges) == 0 {
		question, err = o.questions.OpeningQuestion(ctx, s.ResumeText, s.JobDescription)
	} else {
		question, err = o.questions.NextQuestion(ctx, o.history())
	}
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to generate question", "session_id", s.ID, "error", err)
		return "", fmt.Errorf("generate question: %w", err)
	}

	s.CurrentQuestion = question
	o.setState(interview.StateListening)
	if o.onQuestion != nil {
		o.onQuestion(question)
	}
	return question, nil
}

// ProcessAnswer transcribes, coaches and evaluates one spoken answer to the
// current question. pcm is 16-bit little-endian mono audio. When any
// collaborator fails the session is left as it was before the call, back in
// LISTENING, so the same question can be answered again.
func (o *Orchestrator) ProcessAnswer(ctx context.Context, pcm []byte, sampleRate int) (string, *interview.CoachingFeedback, *interview.Evaluation, error) {
	const op = "process answer"
	if err := o.requireOpen(op); err != nil {
		return "", nil, nil, err
	}
	s := o.session
	if s.State != interview.StateListening {
		return "", nil, nil, interview.NewSessionStateError(op, s.State, interview.ErrInvalidTransition)
	}
	if sampleRate <= 0 {
		return "", nil, nil, fmt.Errorf("%s: sample rate must be positive, got %d", op, sampleRate)
	}

	o.setState(interview.StateEvaluating)

	transcript, err := o.transcriber.Transcribe(ctx, pcm, sampleRate)
	if err != nil {
		return "", nil, nil, o.abortAnswer(ctx, "transcribe answer", err)
	}
	var feedback *interview.CoachingFeedback
	if o.coach != nil {
		feedback, err = o.coach.Feedback(ctx, pcm, sampleRate)
		if err != nil {
			return "", nil, nil, o.abortAnswer(ctx, "coach answer", err)
		}
	}
	evaluation, err := o.evaluator.Evaluate(ctx, s.CurrentQuestion, transcript, o.history())
	if err != nil {
		return "", nil, nil, o.abortAnswer(ctx, "evaluate answer", err)
	}

	s.Exchanges = append(s.Exchanges, interview.Exchange{
		Question:              s.CurrentQuestion,
		Answer:                transcript,
		AnswerDurationSeconds: float64(len(pcm)) / float64(2*sampleRate),
		Timestamp:             interview.StampTime(o.now()),
		Evaluation:            evaluation,
		Coaching:              feedback,
	})
	s.RecomputeCounters()
	o.logger.InfoContext(ctx, "answer processed", "session_id", s.ID, "exchange", len(s.Exchanges))

	if o.onFeedback != nil {
		o.onFeedback(feedback)
	}
	return transcript, feedback, evaluation, nil
}

func (o *Orchestrator) abortAnswer(ctx context.Context, step string, err error) error {
	o.logger.ErrorContext(ctx, "failed to process answer", "session_id", o.session.ID, "step", step, "error", err)
	o.setState(interview.StateListening)
	return fmt.Errorf("%s: %w", step, err)
}

// SpeakQuestion renders text to audio without touching the session.
func (o *Orchestrator) SpeakQuestion(ctx context.Context, text string) ([]byte, error) {
	audio, err := o.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("synthesize question: %w", err)
	}
	return audio, nil
}

func (o *Orchestrator) EndSession(ctx context.Context) (interview.Summary, error) {
	const op = "end session"
	if err := o.requireOpen(op); err != nil {
		return interview.Summary{}, err
	}
	s := o.session
	if !interview.CanTransition(s.State, interview.StateComplete) {
		return interview.Summary{}, interview.NewSessionStateError(op, s.State, interview.ErrInvalidTransition)
	}

	ended := interview.StampTime(o.now())
	s.EndedAt = &ended
	o.setState(interview.StateComplete)
	summary := interview.Summarize(s, ended)
	o.logger.InfoContext(ctx, "interview session ended", "session_id", s.ID, "questions", summary.TotalQuestions, "average_score", summary.AverageScore)
	return summary, nil
}

// SessionStats returns the zero Stats when no session is held.
func (o *Orchestrator) SessionStats() interview.Stats {
	if o.session == nil {
		return interview.Stats{}
	}
	return interview.StatsOf(o.session)
}

// Reset drops the in-memory session. Stored snapshots are untouched.
func (o *Orchestrator) Reset() {
	if o.session != nil {
		o.logger.Info("interview session reset", "session_id", o.session.ID)
	}
	o.session = nil
	if o.coach != nil {
		o.coach.Reset()
	}
	o.notifyState()
}

func (o *Orchestrator) requireOpen(op string) error {
	if o.session == nil {
		return interview.NewSessionStateError(op, interview.StateIdle, interview.ErrNoActiveSession)
	}
	if o.session.IsComplete() {
		return interview.NewSessionStateError(op, o.session.State, interview.ErrSessionEnded)
	}
	return nil
}

func (o *Orchestrator) history() interviewer.Context {
	s := o.session
	return interviewer.Context{
		ResumeText:     s.ResumeText,
		JobDescription: s.JobDescription,
		Exchanges:      s.Clone().Exchanges,
	}
}

func (o *Orchestrator) setState(state interview.State) {
	o.session.State = state
	o.notifyState()
}

func (o *Orchestrator) notifyState() {
	if o.onStateChange != nil {
		o.onStateChange(o.State())
	}
}
