package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder reads integer PCM RIFF/WAVE files and downmixes them to mono
// 16-bit samples.
type WAVDecoder struct{}

func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{}
}

func (WAVDecoder) Decode(r io.Reader) (audio.Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("read wav: %w", err)
	}
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return audio.Clip{}, fmt.Errorf("%w: not a valid wav file", audio.ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return audio.Clip{}, fmt.Errorf("%w: wav format tag %#x", audio.ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	depth := int(dec.BitDepth)
	if depth != 16 && depth != 24 && depth != 32 {
		return audio.Clip{}, fmt.Errorf("%w: %d-bit wav", audio.ErrUnsupportedFormat, depth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Clip{}, fmt.Errorf("decode wav: %w", err)
	}
	channels := max(buf.Format.NumChannels, 1)
	frames := len(buf.Data) / channels
	pcm := make([]byte, 0, frames*2)
	for f := 0; f < frames; f++ {
		var sum int
		for ch := 0; ch < channels; ch++ {
			sum += buf.Data[f*channels+ch] >> (depth - 16)
		}
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(clampPCM(sum/channels)))
	}
	return audio.Clip{PCM: pcm, SampleRate: buf.Format.SampleRate}, nil
}

func clampPCM(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
