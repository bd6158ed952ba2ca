package audio

import (
	"errors"
	"io"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Clip is mono 16-bit little-endian PCM.
type Clip struct {
	PCM        []byte
	SampleRate int
}

func (c Clip) DurationSeconds() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.PCM)) / float64(2*c.SampleRate)
}

type Decoder interface {
	Decode(r io.Reader) (Clip, error)
}
