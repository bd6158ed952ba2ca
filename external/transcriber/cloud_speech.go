package transcriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/transcriber"
)

const (
	speechAPIEndpointPort = 443
	audioChannelCount     = 1
	bytesPerSample        = 2
	// Synchronous recognition accepts at most one minute of audio per request.
	maxChunkSeconds = 55
)

var ErrTranscriptionUnavailable = errors.New("speech service temporarily unavailable")

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Language        string
	Location        string
	Model           string
}

type recognizeClient interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

type CloudSpeechTranscriber struct {
	projectID       string
	credentialsJSON string
	language        string
	location        string
	model           string
	logger          *slog.Logger

	mu        sync.Mutex
	client    recognizeClient
	newClient func(ctx context.Context) (recognizeClient, error)
}

var _ transcriber.Transcriber = (*CloudSpeechTranscriber)(nil)

func NewCloudSpeechTranscriber(cfg CloudSpeechConfig, logger *slog.Logger) *CloudSpeechTranscriber {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "global"
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &CloudSpeechTranscriber{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		language:        cfg.Language,
		location:        location,
		model:           strings.TrimSpace(cfg.Model),
		logger:          logger,
	}
	t.newClient = t.dial
	return t
}

func (t *CloudSpeechTranscriber) dial(ctx context.Context) (recognizeClient, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(t.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}
	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if endpoint := t.endpoint(); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return speech.NewClient(ctx, opts...)
}

func (t *CloudSpeechTranscriber) endpoint() string {
	if t.location == "global" {
		return ""
	}
	return fmt.Sprintf("%s-speech.googleapis.com:%d", t.location, speechAPIEndpointPort)
}

func (t *CloudSpeechTranscriber) recognizer() string {
	return fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location)
}

func (t *CloudSpeechTranscriber) getClient(ctx context.Context) (recognizeClient, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return t.client, nil
	}
	c, err := t.newClient(ctx)
	if err != nil {
		return nil, err
	}
	t.client = c
	return c, nil
}

// Transcribe sends the clip to Cloud Speech in chunks short enough for
// synchronous recognition and joins the best alternative of every result.
// Silence yields an empty transcript.
func (t *CloudSpeechTranscriber) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	if sampleRate <= 0 {
		return "", fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if len(pcm) < bytesPerSample {
		return "", nil
	}
	client, err := t.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create speech client: %w", err)
	}

	var parts []string
	for _, chunk := range splitPCM(pcm, sampleRate*bytesPerSample*maxChunkSeconds) {
		resp, err := client.Recognize(ctx, t.request(chunk, sampleRate))
		if err != nil {
			if isTransientSpeechError(err) {
				t.logger.WarnContext(ctx, "cloud speech recognize failed with transient error", "location", t.location, "error", err)
				return "", fmt.Errorf("%w: %v", ErrTranscriptionUnavailable, err)
			}
			t.logger.ErrorContext(ctx, "cloud speech recognize failed", "location", t.location, "error", err)
			return "", fmt.Errorf("recognize: %w", err)
		}
		for _, result := range resp.GetResults() {
			alts := result.GetAlternatives()
			if len(alts) == 0 {
				continue
			}
			if text := strings.TrimSpace(alts[0].GetTranscript()); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " "), nil
}

func (t *CloudSpeechTranscriber) request(pcm []byte, sampleRate int) *speechpb.RecognizeRequest {
	return &speechpb.RecognizeRequest{
		Recognizer: t.recognizer(),
		Config: &speechpb.RecognitionConfig{
			Model:         t.model,
			LanguageCodes: []string{t.language},
			DecodingConfig: &speechpb.RecognitionConfig_ExplicitDecodingConfig{
				ExplicitDecodingConfig: &speechpb.ExplicitDecodingConfig{
					Encoding:          speechpb.ExplicitDecodingConfig_LINEAR16,
					SampleRateHertz:   int32(sampleRate),
					AudioChannelCount: audioChannelCount,
				},
			},
			Features: &speechpb.RecognitionFeatures{EnableAutomaticPunctuation: true},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: pcm},
	}
}

func (t *CloudSpeechTranscriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// splitPCM cuts on sample boundaries; a trailing odd byte is dropped.
func splitPCM(pcm []byte, maxBytes int) [][]byte {
	pcm = pcm[:len(pcm)-len(pcm)%bytesPerSample]
	maxBytes -= maxBytes % bytesPerSample
	if maxBytes <= 0 || len(pcm) <= maxBytes {
		return [][]byte{pcm}
	}
	var chunks [][]byte
	for len(pcm) > 0 {
		n := min(maxBytes, len(pcm))
		chunks = append(chunks, pcm[:n])
		pcm = pcm[n:]
	}
	return chunks
}

func isTransientSpeechError(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return false
}
