package audio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/audio"
)

// FileDecoder picks a decoder from the container magic bytes.
type FileDecoder struct {
	wav  audio.Decoder
	opus audio.Decoder
}

func NewFileDecoder() *FileDecoder {
	return &FileDecoder{wav: NewWAVDecoder(), opus: NewOggOpusDecoder()}
}

func (d *FileDecoder) Decode(r io.Reader) (audio.Clip, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("%w: %v", audio.ErrUnsupportedFormat, err)
	}
	switch {
	case bytes.Equal(head, []byte("RIFF")):
		return d.wav.Decode(br)
	case bytes.Equal(head, []byte("OggS")):
		return d.opus.Decode(br)
	default:
		return audio.Clip{}, fmt.Errorf("%w: unknown header %q", audio.ErrUnsupportedFormat, head)
	}
}
