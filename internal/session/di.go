package session

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/cache"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/coach"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interviewer"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/repository"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/synthesizer"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/transcriber"
)

// Factory builds orchestrators that share collaborators but each get their
// own coach.
type Factory struct {
	questions   interviewer.QuestionGenerator
	evaluator   interviewer.Evaluator
	transcriber transcriber.Transcriber
	newCoach    coach.Factory
	synthesizer synthesizer.Synthesizer
	logger      *slog.Logger
}

func NewFactory(q interviewer.QuestionGenerator, ev interviewer.Evaluator, stt transcriber.Transcriber, newCoach coach.Factory, tts synthesizer.Synthesizer, logger *slog.Logger) *Factory {
	return &Factory{
		questions:   q,
		evaluator:   ev,
		transcriber: stt,
		newCoach:    newCoach,
		synthesizer: tts,
		logger:      logger,
	}
}

func (f *Factory) New(opts ...Option) *Orchestrator {
	opts = append([]Option{WithLogger(f.logger)}, opts...)
	return NewOrchestrator(Collaborators{
		Questions:   f.questions,
		Evaluator:   f.evaluator,
		Transcriber: f.transcriber,
		Coach:       f.newCoach(),
		Synthesizer: f.synthesizer,
	}, opts...)
}

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Factory, error) {
		return NewFactory(
			do.MustInvoke[interviewer.QuestionGenerator](i),
			do.MustInvoke[interviewer.Evaluator](i),
			do.MustInvoke[transcriber.Transcriber](i),
			do.MustInvoke[coach.Factory](i),
			do.MustInvoke[synthesizer.Synthesizer](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})
	do.Provide(injector, func(i do.Injector) (*SnapshotStore, error) {
		return NewSnapshotStore(
			do.MustInvoke[cache.Cache](i),
			do.MustInvoke[repository.SessionRepository](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})
}
