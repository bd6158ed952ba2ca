package interview

import "time"

type Summary struct {
	SessionID            string  `json:"session_id" yaml:"session_id"`
	TotalQuestions       int     `json:"total_questions" yaml:"total_questions"`
	AverageScore         float64 `json:"average_score" yaml:"average_score"`
	AverageTechnical     float64 `json:"average_technical_accuracy" yaml:"average_technical_accuracy"`
	AverageClarity       float64 `json:"average_clarity" yaml:"average_clarity"`
	AverageDepth         float64 `json:"average_depth" yaml:"average_depth"`
	AverageCompleteness  float64 `json:"average_completeness" yaml:"average_completeness"`
	AverageWPM           float64 `json:"average_wpm" yaml:"average_wpm"`
	TotalFillerWords     int     `json:"total_filler_words" yaml:"total_filler_words"`
	DurationSeconds      float64 `json:"duration_seconds" yaml:"duration_seconds"`
	EvaluatedAnswerCount int     `json:"evaluated_answer_count" yaml:"evaluated_answer_count"`
}

// Stats is the live view of a running session. The zero value is the
// explicit empty result returned when no session is held.
type Stats struct {
	SessionID      string  `json:"session_id,omitempty"`
	QuestionsAsked int     `json:"questions_asked"`
	AverageScore   float64 `json:"average_score"`
	AverageWPM     float64 `json:"average_wpm"`
	TotalFillers   int     `json:"total_fillers"`
}

func (s Stats) IsEmpty() bool {
	return s == Stats{}
}

// Summarize aggregates every exchange of s. Sessions without an end time are
// measured up to now.
func Summarize(s *Session, now time.Time) Summary {
	sum := Summary{
		SessionID:        s.ID,
		TotalQuestions:   len(s.Exchanges),
		AverageWPM:       s.AverageWPM,
		TotalFillerWords: s.TotalFillerWords,
	}
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	if d := end.Sub(s.StartedAt).Seconds(); d > 0 {
		sum.DurationSeconds = d
	}

	var overall, technical, clarity, depth, completeness float64
	for _, ex := range s.Exchanges {
		if ex.Evaluation == nil {
			continue
		}
		sum.EvaluatedAnswerCount++
		overall += ex.Evaluation.Average()
		technical += float64(ex.Evaluation.TechnicalAccuracy)
		clarity += float64(ex.Evaluation.Clarity)
		depth += float64(ex.Evaluation.Depth)
		completeness += float64(ex.Evaluation.Completeness)
	}
	if n := float64(sum.EvaluatedAnswerCount); n > 0 {
		sum.AverageScore = overall / n
		sum.AverageTechnical = technical / n
		sum.AverageClarity = clarity / n
		sum.AverageDepth = depth / n
		sum.AverageCompleteness = completeness / n
	}
	return sum
}

func StatsOf(s *Session) Stats {
	sum := Summarize(s, s.StartedAt)
	return Stats{
		SessionID:      s.ID,
		QuestionsAsked: s.TotalQuestionsAsked,
		AverageScore:   sum.AverageScore,
		AverageWPM:     s.AverageWPM,
		TotalFillers:   s.TotalFillerWords,
	}
}
