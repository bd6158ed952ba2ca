// Package interview holds the session aggregate shared by the orchestrator and
// both session stores.
package interview

import "time"

type State string

const (
	StateIdle       State = "IDLE"
	StateIntro      State = "INTRO"
	StateListening  State = "LISTENING"
	StateEvaluating State = "EVALUATING"
	StateComplete   State = "COMPLETE"
)

var transitions = map[State][]State{
	StateIdle:       {StateIntro},
	StateIntro:      {StateListening, StateComplete},
	StateListening:  {StateListening, StateEvaluating, StateComplete},
	StateEvaluating: {StateListening, StateComplete},
}

// CanTransition reports whether the state graph allows moving from one state
// to another. COMPLETE has no outgoing edges; only a reset leaves it.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) Valid() bool {
	switch s {
	case StateIdle, StateIntro, StateListening, StateEvaluating, StateComplete:
		return true
	default:
		return false
	}
}

type AlertLevel string

const (
	AlertLevelOK       AlertLevel = "OK"
	AlertLevelWarning  AlertLevel = "WARNING"
	AlertLevelCritical AlertLevel = "CRITICAL"
)

// Severity orders alert levels; unknown levels rank below OK.
func (l AlertLevel) Severity() int {
	switch l {
	case AlertLevelOK:
		return 0
	case AlertLevelWarning:
		return 1
	case AlertLevelCritical:
		return 2
	default:
		return -1
	}
}

type Session struct {
	ID                  string     `json:"session_id"`
	State               State      `json:"state"`
	ResumeText          string     `json:"resume_text"`
	JobDescription      string     `json:"job_description"`
	CurrentQuestion     string     `json:"current_question"`
	StartedAt           time.Time  `json:"started_at"`
	EndedAt             *time.Time `json:"ended_at,omitempty"`
	TotalQuestionsAsked int        `json:"total_questions_asked"`
	TotalFillerWords    int        `json:"total_filler_words"`
	AverageWPM          float64    `json:"average_wpm"`
	Exchanges           []Exchange `json:"exchanges"`
}

type Exchange struct {
	Question              string            `json:"question"`
	Answer                string            `json:"answer"`
	AnswerDurationSeconds float64           `json:"answer_duration_seconds"`
	Timestamp             time.Time         `json:"timestamp"`
	Evaluation            *Evaluation       `json:"evaluation,omitempty"`
	Coaching              *CoachingFeedback `json:"coaching_feedback,omitempty"`
}

type CoachingFeedback struct {
	VolumeStatus   string     `json:"volume_status"`
	PaceStatus     string     `json:"pace_status"`
	FillerCount    int        `json:"filler_count"`
	WordsPerMinute float64    `json:"words_per_minute"`
	PrimaryAlert   string     `json:"primary_alert"`
	AlertLevel     AlertLevel `json:"alert_level"`
}

// TimePrecision is the finest timestamp resolution every session store keeps.
// TIMESTAMPTZ columns hold microseconds.
const TimePrecision = time.Microsecond

// StampTime converts t to the UTC, microsecond form sessions carry, so a
// stored session loads back equal to the one that was saved.
func StampTime(t time.Time) time.Time {
	return t.UTC().Truncate(TimePrecision)
}

func NewSession(id, resumeText, jobDescription string, startedAt time.Time) *Session {
	return &Session{
		ID:             id,
		State:          StateIntro,
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		StartedAt:      StampTime(startedAt),
		Exchanges:      []Exchange{},
	}
}

// Clone returns a deep copy; the copy shares no pointers with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.EndedAt != nil {
		ended := *s.EndedAt
		c.EndedAt = &ended
	}
	c.Exchanges = make([]Exchange, len(s.Exchanges))
	for i, ex := range s.Exchanges {
		c.Exchanges[i] = ex.clone()
	}
	return &c
}

func (e Exchange) clone() Exchange {
	if e.Evaluation != nil {
		ev := *e.Evaluation
		e.Evaluation = &ev
	}
	if e.Coaching != nil {
		cf := *e.Coaching
		e.Coaching = &cf
	}
	return e
}

func (s *Session) IsComplete() bool {
	return s.State == StateComplete
}

// RecomputeCounters derives the running totals from the exchange list.
func (s *Session) RecomputeCounters() {
	s.TotalQuestionsAsked = len(s.Exchanges)
	fillers := 0
	var wpmSum float64
	wpmCount := 0
	for _, ex := range s.Exchanges {
		if ex.Coaching == nil {
			continue
		}
		fillers += ex.Coaching.FillerCount
		wpmSum += ex.Coaching.WordsPerMinute
		wpmCount++
	}
	s.TotalFillerWords = fillers
	if wpmCount == 0 {
		s.AverageWPM = 0
		return
	}
	s.AverageWPM = wpmSum / float64(wpmCount)
}
