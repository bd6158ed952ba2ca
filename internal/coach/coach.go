package coach

import (
	"context"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
)

// Coach analyses delivery of a spoken answer. Implementations that keep state
// across answers drop it on Reset. Session averages are derived from the
// stored exchanges, not from the coach.
type Coach interface {
	Feedback(ctx context.Context, pcm []byte, sampleRate int) (*interview.CoachingFeedback, error)
	Reset()
}

// Factory builds a fresh Coach for each orchestrator so running averages are
// never shared between sessions.
type Factory func() Coach
