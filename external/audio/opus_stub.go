//go:build !opus

package audio

import (
	"fmt"
	"io"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/audio"
)

type OggOpusDecoder struct{}

func NewOggOpusDecoder() *OggOpusDecoder {
	return &OggOpusDecoder{}
}

func (OggOpusDecoder) Decode(_ io.Reader) (audio.Clip, error) {
	return audio.Clip{}, fmt.Errorf("%w: built without opus support", audio.ErrUnsupportedFormat)
}
