package webhook

import "context"

type SummaryPayload struct {
	SessionID           string  `json:"session_id"`
	StartedAt           string  `json:"started_at"`
	EndedAt             string  `json:"ended_at"`
	Timezone            string  `json:"timezone"`
	DurationSeconds     float64 `json:"duration_seconds"`
	TotalQuestions      int     `json:"total_questions"`
	EvaluatedAnswers    int     `json:"evaluated_answers"`
	AverageScore        float64 `json:"average_score"`
	AverageTechnical    float64 `json:"average_technical"`
	AverageClarity      float64 `json:"average_clarity"`
	AverageDepth        float64 `json:"average_depth"`
	AverageCompleteness float64 `json:"average_completeness"`
	AverageWPM          float64 `json:"average_wpm"`
	TotalFillerWords    int     `json:"total_filler_words"`
	Report              string  `json:"report"`
}

type Sender interface {
	SendSummary(ctx context.Context, payload SummaryPayload) error
}
