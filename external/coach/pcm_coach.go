package coach

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/coach"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interview"
)

const (
	frameSizeMs = 30

	silenceFloorDBFS = -45.0
	quietDBFS        = -32.0
	loudDBFS         = -6.0

	// A pause of at least this many unvoiced frames separates two words.
	wordGapFrames      = 3
	minAnalysisSeconds = 1.0

	slowWPM = 100.0
	fastWPM = 170.0
)

const (
	VolumeOK       = "OK"
	VolumeTooQuiet = "TOO_QUIET"
	VolumeTooLoud  = "TOO_LOUD"
	VolumeSilent   = "SILENT"

	PaceSteady  = "STEADY"
	PaceTooSlow = "TOO_SLOW"
	PaceTooFast = "TOO_FAST"
	PaceUnknown = "UNKNOWN"
)

// PCMCoach judges delivery from signal energy alone. It cannot hear words, so
// word rate is estimated from bursts of voiced frames and filler words are not
// counted.
type PCMCoach struct{}

var _ coach.Coach = (*PCMCoach)(nil)

func NewPCMCoach() *PCMCoach {
	return &PCMCoach{}
}

func (c *PCMCoach) Feedback(ctx context.Context, pcm []byte, sampleRate int) (*interview.CoachingFeedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	a := analyze(pcm, sampleRate)
	fb := &interview.CoachingFeedback{
		VolumeStatus: volumeStatus(a),
		PaceStatus:   PaceUnknown,
	}
	if a.voicedFrames > 0 && a.durationSeconds >= minAnalysisSeconds {
		fb.WordsPerMinute = math.Round(float64(a.bursts)/(a.durationSeconds/60)*10) / 10
		fb.PaceStatus = paceStatus(fb.WordsPerMinute)
	}
	fb.PrimaryAlert, fb.AlertLevel = primaryAlert(fb)
	return fb, nil
}

// Reset is a no-op: each answer is judged on its own audio.
func (c *PCMCoach) Reset() {}

type analysis struct {
	durationSeconds float64
	voicedFrames    int
	voicedDBFS      float64
	bursts          int
}

func analyze(pcm []byte, sampleRate int) analysis {
	samples := len(pcm) / 2
	a := analysis{durationSeconds: float64(samples) / float64(sampleRate)}

	frameSamples := max(sampleRate*frameSizeMs/1000, 1)
	var (
		voicedSumSquares float64
		voicedSamples    int
		gap              = wordGapFrames
	)
	for start := 0; start < samples; start += frameSamples {
		end := min(start+frameSamples, samples)
		var sumSquares float64
		for i := start; i < end; i++ {
			v := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768
			sumSquares += v * v
		}
		if toDBFS(sumSquares, end-start) < silenceFloorDBFS {
			gap++
			continue
		}
		if gap >= wordGapFrames {
			a.bursts++
		}
		gap = 0
		a.voicedFrames++
		voicedSumSquares += sumSquares
		voicedSamples += end - start
	}
	if voicedSamples > 0 {
		a.voicedDBFS = toDBFS(voicedSumSquares, voicedSamples)
	}
	return a
}

func toDBFS(sumSquares float64, n int) float64 {
	if n == 0 || sumSquares == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(math.Sqrt(sumSquares/float64(n)))
}

func volumeStatus(a analysis) string {
	switch {
	case a.voicedFrames == 0:
		return VolumeSilent
	case a.voicedDBFS < quietDBFS:
		return VolumeTooQuiet
	case a.voicedDBFS > loudDBFS:
		return VolumeTooLoud
	default:
		return VolumeOK
	}
}

func paceStatus(wpm float64) string {
	switch {
	case wpm < slowWPM:
		return PaceTooSlow
	case wpm > fastWPM:
		return PaceTooFast
	default:
		return PaceSteady
	}
}

// primaryAlert reports the single most pressing issue.
func primaryAlert(fb *interview.CoachingFeedback) (string, interview.AlertLevel) {
	switch {
	case fb.VolumeStatus == VolumeSilent:
		return "No speech detected. Check your microphone.", interview.AlertLevelCritical
	case fb.VolumeStatus == VolumeTooQuiet:
		return "Speak up a little.", interview.AlertLevelWarning
	case fb.VolumeStatus == VolumeTooLoud:
		return "You are clipping. Move back from the microphone.", interview.AlertLevelWarning
	case fb.PaceStatus == PaceTooFast:
		return "Slow down.", interview.AlertLevelWarning
	case fb.PaceStatus == PaceTooSlow:
		return "Pick up the pace.", interview.AlertLevelWarning
	default:
		return "", interview.AlertLevelOK
	}
}
