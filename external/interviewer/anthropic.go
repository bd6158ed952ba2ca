package interviewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interviewer"
)

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.4
)

var errEmptyCompletion = errors.New("model returned no text")

type AnthropicConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// AnthropicInterviewer asks questions and scores answers with the Anthropic
// Messages API. It implements both interviewer.QuestionGenerator and
// interviewer.Evaluator.
type AnthropicInterviewer struct {
	client      anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
}

var (
	_ interviewer.QuestionGenerator = (*AnthropicInterviewer)(nil)
	_ interviewer.Evaluator         = (*AnthropicInterviewer)(nil)
)

func NewAnthropicInterviewer(cfg AnthropicConfig, opts ...option.RequestOption) *AnthropicInterviewer {
	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	a := &AnthropicInterviewer{
		client:      anthropic.NewClient(clientOpts...),
		model:       anthropic.Model(cfg.Model),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
	if a.maxTokens <= 0 {
		a.maxTokens = defaultMaxTokens
	}
	if a.temperature <= 0 {
		a.temperature = defaultTemperature
	}
	return a
}

const interviewerSystemPrompt = `You are a senior technical interviewer running a spoken mock interview.
Ask exactly one question at a time. Keep each question under 60 words, conversational, and answerable aloud in two minutes.
Reply with the question text only: no preamble, no numbering, no quotation marks.`

const evaluatorSystemPrompt = `You are a strict but fair technical interviewer scoring a candidate's spoken answer.
Score each dimension with an integer from 1 (very poor) to 10 (excellent).
Reply with a single JSON object and nothing else, using exactly these keys:
{"technical_accuracy": int, "clarity": int, "depth": int, "completeness": int, "improvement_tip": string, "positive_note": string}`

func (a *AnthropicInterviewer) OpeningQuestion(ctx context.Context, resumeText, jobDescription string) (string, error) {
	var b strings.Builder
	writeBackground(&b, resumeText, jobDescription)
	b.WriteString("Open the interview with a warm first question that invites the candidate to introduce their most relevant experience for this role.")
	text, err := a.complete(ctx, interviewerSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("failed to generate opening question: %w", err)
	}
	return cleanQuestion(text), nil
}

func (a *AnthropicInterviewer) NextQuestion(ctx context.Context, history interviewer.Context) (string, error) {
	var b strings.Builder
	writeBackground(&b, history.ResumeText, history.JobDescription)
	writeHistory(&b, history.Exchanges)
	b.WriteString("Ask the next question. Probe weaknesses in earlier answers or move to an untested skill from the job description. Do not repeat a previous question.")
	text, err := a.complete(ctx, interviewerSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("failed to generate next question: %w", err)
	}
	return cleanQuestion(text), nil
}

func (a *AnthropicInterviewer) Evaluate(ctx context.Context, question, answer string, history interviewer.Context) (*interview.Evaluation, error) {
	var b strings.Builder
	writeBackground(&b, history.ResumeText, history.JobDescription)
	writeHistory(&b, history.Exchanges)
	if len(history.Exchanges) > 0 {
		b.WriteString("Score only the answer below, but hold it to what the candidate already claimed earlier in the interview.\n\n")
	}
	fmt.Fprintf(&b, "Question:\n%s\n\nCandidate's transcribed answer:\n%s\n", question, answerOrSilence(answer))
	text, err := a.complete(ctx, evaluatorSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate answer: %w", err)
	}
	ev, err := parseEvaluation(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse evaluation: %w", err)
	}
	return ev, nil
}

func (a *AnthropicInterviewer) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			if t := block.AsText().Text; t != "" {
				parts = append(parts, t)
			}
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

func writeBackground(b *strings.Builder, resumeText, jobDescription string) {
	if resumeText != "" {
		fmt.Fprintf(b, "Candidate resume:\n%s\n\n", resumeText)
	}
	if jobDescription != "" {
		fmt.Fprintf(b, "Job description:\n%s\n\n", jobDescription)
	}
}

func writeHistory(b *strings.Builder, exchanges []interview.Exchange) {
	if len(exchanges) == 0 {
		return
	}
	b.WriteString("Interview so far:\n")
	for i, ex := range exchanges {
		fmt.Fprintf(b, "Q%d: %s\nA%d: %s\n", i+1, ex.Question, i+1, answerOrSilence(ex.Answer))
		if ev := ex.Evaluation; ev != nil {
			fmt.Fprintf(b, "(scored %.1f/10)\n", ev.Average())
		}
	}
	b.WriteString("\n")
}

func answerOrSilence(answer string) string {
	if strings.TrimSpace(answer) == "" {
		return "(no audible answer)"
	}
	return answer
}

func cleanQuestion(text string) string {
	return strings.Trim(strings.TrimSpace(text), `"`)
}

// parseEvaluation accepts the JSON object even when the model wraps it in
// prose or a code fence, and clamps scores into range.
func parseEvaluation(text string) (*interview.Evaluation, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in %q", text)
	}
	var ev interview.Evaluation
	if err := json.Unmarshal([]byte(text[start:end+1]), &ev); err != nil {
		return nil, err
	}
	ev.TechnicalAccuracy = interview.ClampScore(ev.TechnicalAccuracy)
	ev.Clarity = interview.ClampScore(ev.Clarity)
	ev.Depth = interview.ClampScore(ev.Depth)
	ev.Completeness = interview.ClampScore(ev.Completeness)
	return &ev, nil
}
