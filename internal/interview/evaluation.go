package interview

import "fmt"

// Score bounds shared with the evaluator contract.
const (
	MinScore = 1
	MaxScore = 10
)

type Evaluation struct {
	TechnicalAccuracy int    `json:"technical_accuracy"`
	Clarity           int    `json:"clarity"`
	Depth             int    `json:"depth"`
	Completeness      int    `json:"completeness"`
	ImprovementTip    string `json:"improvement_tip"`
	PositiveNote      string `json:"positive_note"`
}

func (e *Evaluation) Average() float64 {
	return float64(e.TechnicalAccuracy+e.Clarity+e.Depth+e.Completeness) / 4
}

func (e *Evaluation) Validate() error {
	scores := []struct {
		name  string
		value int
	}{
		{name: "technical_accuracy", value: e.TechnicalAccuracy},
		{name: "clarity", value: e.Clarity},
		{name: "depth", value: e.Depth},
		{name: "completeness", value: e.Completeness},
	}
	for _, s := range scores {
		if s.value < MinScore || s.value > MaxScore {
			return fmt.Errorf("%s must be between %d and %d, got %d", s.name, MinScore, MaxScore, s.value)
		}
	}
	return nil
}

// ClampScore pulls a collaborator-provided score into [MinScore, MaxScore].
func ClampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
