package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/synthesizer"
)

// Keeps one request comfortably under the 4096 character input limit.
const maxInputRunes = 4000

var ErrEmptyText = errors.New("nothing to synthesize")

type OpenAITTSConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
	Format  string
}

type OpenAITTS struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.AudioSpeechNewParamsVoice
	format openai.AudioSpeechNewParamsResponseFormat
}

var _ synthesizer.Synthesizer = (*OpenAITTS)(nil)

func NewOpenAITTS(cfg OpenAITTSConfig, opts ...option.RequestOption) *OpenAITTS {
	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)
	client := openai.NewClient(clientOpts...)

	return &OpenAITTS{
		client: &client,
		model:  openai.SpeechModel(cfg.Model),
		voice:  openai.AudioSpeechNewParamsVoice(cfg.Voice),
		format: openai.AudioSpeechNewParamsResponseFormat(cfg.Format),
	}
}

func (s *OpenAITTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if r := []rune(text); len(r) > maxInputRunes {
		text = string(r[:maxInputRunes])
	}

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          s.model,
		Voice:          s.voice,
		ResponseFormat: s.format,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech api error: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("openai speech api returned empty audio")
	}
	return audio, nil
}
