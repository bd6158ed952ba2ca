package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/webhook"
)

const reportTimeLayout = "2006-01-02 15:04:05"

// BuildReport renders a plain-text transcript of s with the elapsed time of
// every exchange and the closing summary.
func BuildReport(s *interview.Session, summary interview.Summary, timezone string, loc *time.Location) []byte {
	loc = safeLocation(loc)
	end := s.StartedAt.Add(time.Duration(summary.DurationSeconds * float64(time.Second)))
	if s.EndedAt != nil {
		end = *s.EndedAt
	}

	lines := []string{
		fmt.Sprintf("Session: %s", s.ID),
		fmt.Sprintf("Period: %s ~ %s (%s)", s.StartedAt.In(loc).Format(reportTimeLayout), end.In(loc).Format(reportTimeLayout), timezone),
		"",
	}
	for i, ex := range s.Exchanges {
		elapsed := ex.Timestamp.Sub(s.StartedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		lines = append(lines,
			fmt.Sprintf("%s Q%d: %s", formatElapsedHMS(elapsed), i+1, ex.Question),
			fmt.Sprintf("         A%d: %s", i+1, ex.Answer),
		)
		if ev := ex.Evaluation; ev != nil {
			lines = append(lines, fmt.Sprintf("         score %.1f (technical %d, clarity %d, depth %d, completeness %d)",
				ev.Average(), ev.TechnicalAccuracy, ev.Clarity, ev.Depth, ev.Completeness))
			if ev.ImprovementTip != "" {
				lines = append(lines, "         tip: "+ev.ImprovementTip)
			}
		}
		if cf := ex.Coaching; cf != nil {
			line := fmt.Sprintf("         delivery: %.0f wpm, %d fillers, volume %s, pace %s", cf.WordsPerMinute, cf.FillerCount, cf.VolumeStatus, cf.PaceStatus)
			if cf.PrimaryAlert != "" {
				line += fmt.Sprintf(" [%s] %s", cf.AlertLevel, cf.PrimaryAlert)
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Questions: %d (evaluated %d)", summary.TotalQuestions, summary.EvaluatedAnswerCount),
		fmt.Sprintf("Average score: %.2f", summary.AverageScore),
		fmt.Sprintf("Average pace: %.0f wpm, filler words: %d", summary.AverageWPM, summary.TotalFillerWords),
		fmt.Sprintf("Duration: %s", formatElapsedHMS(time.Duration(summary.DurationSeconds*float64(time.Second)))),
	)
	return []byte(strings.Join(lines, "\n"))
}

func BuildSummaryPayload(s *interview.Session, summary interview.Summary, timezone string, loc *time.Location) webhook.SummaryPayload {
	loc = safeLocation(loc)
	endedAt := ""
	if s.EndedAt != nil {
		endedAt = s.EndedAt.In(loc).Format(time.RFC3339)
	}
	return webhook.SummaryPayload{
		SessionID:           s.ID,
		StartedAt:           s.StartedAt.In(loc).Format(time.RFC3339),
		EndedAt:             endedAt,
		Timezone:            timezone,
		DurationSeconds:     summary.DurationSeconds,
		TotalQuestions:      summary.TotalQuestions,
		EvaluatedAnswers:    summary.EvaluatedAnswerCount,
		AverageScore:        summary.AverageScore,
		AverageTechnical:    summary.AverageTechnical,
		AverageClarity:      summary.AverageClarity,
		AverageDepth:        summary.AverageDepth,
		AverageCompleteness: summary.AverageCompleteness,
		AverageWPM:          summary.AverageWPM,
		TotalFillerWords:    summary.TotalFillerWords,
		Report:              string(BuildReport(s, summary, timezone, loc)),
	}
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
