// Package interviewer declares the language-model collaborators that write
// questions and score answers.
package interviewer

import (
	"context"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
)

// Context is the conversation so far as seen by the model.
type Context struct {
	ResumeText     string
	JobDescription string
	Exchanges      []interview.Exchange
}

type QuestionGenerator interface {
	OpeningQuestion(ctx context.Context, resumeText, jobDescription string) (string, error)
	NextQuestion(ctx context.Context, history Context) (string, error)
}

// Evaluator scores an answer. Scores must lie in [interview.MinScore,
// interview.MaxScore].
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer string, history Context) (*interview.Evaluation, error)
}
