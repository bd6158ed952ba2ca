//go:build opus

package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hraban/opus"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/audio"
)

const (
	opusSampleRate  = 48000
	samplesPerChunk = opusSampleRate * 60 / 1000
)

// OggOpusDecoder reads mono Ogg/Opus recordings. It needs libopusfile and is
// only built with the opus tag.
type OggOpusDecoder struct{}

func NewOggOpusDecoder() *OggOpusDecoder {
	return &OggOpusDecoder{}
}

func (OggOpusDecoder) Decode(r io.Reader) (audio.Clip, error) {
	stream, err := opus.NewStream(r)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("%w: open ogg opus: %v", audio.ErrUnsupportedFormat, err)
	}
	defer stream.Close()

	var pcm []byte
	buf := make([]int16, samplesPerChunk)
	for {
		n, err := stream.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return audio.Clip{}, fmt.Errorf("decode ogg opus: %w", err)
		}
		for _, s := range buf[:n] {
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(s))
		}
	}
	return audio.Clip{PCM: pcm, SampleRate: opusSampleRate}, nil
}
