package transcriber

import "context"

// Transcriber turns 16-bit little-endian mono PCM into text.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error)
}
