package transcriber

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeRecognizer struct {
	requests  []*speechpb.RecognizeRequest
	responses []*speechpb.RecognizeResponse
	err       error
	closed    bool
}

func (f *fakeRecognizer) Recognize(_ context.Context, req *speechpb.RecognizeRequest, _ ...gax.CallOption) (*speechpb.RecognizeResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &speechpb.RecognizeResponse{}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeRecognizer) Close() error {
	f.closed = true
	return nil
}

func result(texts ...string) *speechpb.SpeechRecognitionResult {
	r := &speechpb.SpeechRecognitionResult{}
	for _, text := range texts {
		r.Alternatives = append(r.Alternatives, &speechpb.SpeechRecognitionAlternative{Transcript: text})
	}
	return r
}

func newTestTranscriber(location string, fake *fakeRecognizer) (*CloudSpeechTranscriber, *int) {
	dials := 0
	tr := NewCloudSpeechTranscriber(CloudSpeechConfig{
		ProjectID: "proj",
		Language:  "en-US",
		Location:  location,
		Model:     "long",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	tr.newClient = func(context.Context) (recognizeClient, error) {
		dials++
		return fake, nil
	}
	return tr, &dials
}

func TestTranscribeBuildsRequestAndJoinsResults(t *testing.T) {
	fake := &fakeRecognizer{responses: []*speechpb.RecognizeResponse{{
		Results: []*speechpb.SpeechRecognitionResult{
			result(" I led the migration ", "ignored alternative"),
			result(),
			result("to Postgres."),
		},
	}}}
	tr, dials := newTestTranscriber("asia-northeast1", fake)

	text, err := tr.Transcribe(context.Background(), make([]byte, 32000), 16000)
	require.NoError(t, err)
	assert.Equal(t, "I led the migration to Postgres.", text)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "projects/proj/locations/asia-northeast1/recognizers/_", req.GetRecognizer())
	assert.Equal(t, []string{"en-US"}, req.GetConfig().GetLanguageCodes())
	assert.Equal(t, "long", req.GetConfig().GetModel())
	dec := req.GetConfig().GetExplicitDecodingConfig()
	assert.Equal(t, speechpb.ExplicitDecodingConfig_LINEAR16, dec.GetEncoding())
	assert.EqualValues(t, 16000, dec.GetSampleRateHertz())
	assert.EqualValues(t, 1, dec.GetAudioChannelCount())
	assert.Len(t, req.GetContent(), 32000)

	_, err = tr.Transcribe(context.Background(), make([]byte, 320), 16000)
	require.NoError(t, err)
	assert.Equal(t, 1, *dials, "client is reused")

	require.NoError(t, tr.Close())
	assert.True(t, fake.closed)
}

func TestTranscribeSplitsLongClips(t *testing.T) {
	fake := &fakeRecognizer{responses: []*speechpb.RecognizeResponse{
		{Results: []*speechpb.SpeechRecognitionResult{result("first")}},
		{Results: []*speechpb.SpeechRecognitionResult{result("second")}},
	}}
	tr, _ := newTestTranscriber("global", fake)
	pcm := make([]byte, 8000*bytesPerSample*(maxChunkSeconds+5))

	text, err := tr.Transcribe(context.Background(), pcm, 8000)
	require.NoError(t, err)
	assert.Equal(t, "first second", text)
	require.Len(t, fake.requests, 2)
	assert.Len(t, fake.requests[0].GetContent(), 8000*bytesPerSample*maxChunkSeconds)
	assert.Len(t, fake.requests[1].GetContent(), 8000*bytesPerSample*5)
}

func TestTranscribeShortOrInvalidInput(t *testing.T) {
	fake := &fakeRecognizer{}
	tr, dials := newTestTranscriber("global", fake)

	text, err := tr.Transcribe(context.Background(), []byte{1}, 16000)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Zero(t, *dials)

	_, err = tr.Transcribe(context.Background(), make([]byte, 100), 0)
	assert.Error(t, err)
}

func TestTranscribeClassifiesErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "unavailable", err: status.Error(codes.Unavailable, "try later"), transient: true},
		{name: "quota", err: status.Error(codes.ResourceExhausted, "quota"), transient: true},
		{name: "invalid argument", err: status.Error(codes.InvalidArgument, "bad audio")},
		{name: "plain error", err: errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTranscriber("global", &fakeRecognizer{err: tt.err})
			_, err := tr.Transcribe(context.Background(), make([]byte, 320), 16000)
			require.Error(t, err)
			assert.Equal(t, tt.transient, errors.Is(err, ErrTranscriptionUnavailable))
		})
	}
}

func TestTranscribeDialFailure(t *testing.T) {
	tr, _ := newTestTranscriber("global", nil)
	tr.newClient = func(context.Context) (recognizeClient, error) {
		return nil, errors.New("no credentials")
	}
	_, err := tr.Transcribe(context.Background(), make([]byte, 320), 16000)
	assert.ErrorContains(t, err, "create speech client")
}

func TestEndpoint(t *testing.T) {
	tr := NewCloudSpeechTranscriber(CloudSpeechConfig{Location: " us-central1 "}, nil)
	assert.Equal(t, "us-central1-speech.googleapis.com:443", tr.endpoint())

	tr = NewCloudSpeechTranscriber(CloudSpeechConfig{}, nil)
	assert.Equal(t, "global", tr.location)
	assert.Empty(t, tr.endpoint())
}

func TestSplitPCM(t *testing.T) {
	chunks := splitPCM(make([]byte, 11), 4)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 4)
	assert.Len(t, chunks[1], 4)
	assert.Len(t, chunks[2], 2)

	chunks = splitPCM(make([]byte, 6), 5)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 4)
}
