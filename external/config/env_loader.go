package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	internalconfig "github.com/adityatawde9699/System-32---Inter-View-AI/internal/config"
)

type envConfig struct {
	Env                        string        `env:"ENV" envDefault:"production"`
	DatabaseURL                string        `env:"DATABASE_URL" envDefault:"data/sessions.db"`
	DatabaseLockTimeout        time.Duration `env:"DATABASE_LOCK_TIMEOUT" envDefault:"5s"`
	RedisURL                   string        `env:"REDIS_URL"`
	RedisFallbackToMemory      bool          `env:"REDIS_FALLBACK_TO_MEMORY" envDefault:"true"`
	RedisConnectTimeout        time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"2s"`
	RedisOpTimeout             time.Duration `env:"REDIS_OP_TIMEOUT" envDefault:"1s"`
	RedisKeyPrefix             string        `env:"REDIS_KEY_PREFIX" envDefault:"session:"`
	SessionTTL                 time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SessionRetention           time.Duration `env:"SESSION_RETENTION" envDefault:"24h"`
	CleanupInterval            time.Duration `env:"CLEANUP_INTERVAL" envDefault:"15m"`
	DefaultTranscribeLanguage  string        `env:"DEFAULT_TRANSCRIBE_LANGUAGE" envDefault:"en-US"`
	GoogleCloudProjectID       string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string        `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"long"`
	AnthropicAPIKey            string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel             string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`
	OpenAIAPIKey               string        `env:"OPENAI_API_KEY"`
	OpenAITTSModel             string        `env:"OPENAI_TTS_MODEL" envDefault:"tts-1"`
	OpenAITTSVoice             string        `env:"OPENAI_TTS_VOICE" envDefault:"alloy"`
	OpenAITTSFormat            string        `env:"OPENAI_TTS_FORMAT" envDefault:"mp3"`
	ReportTimezone             string        `env:"REPORT_TIMEZONE" envDefault:"UTC"`
	SessionSummaryWebhookURL   string        `env:"SESSION_SUMMARY_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		DatabaseURL:                raw.DatabaseURL,
		DatabaseLockTimeout:        raw.DatabaseLockTimeout,
		RedisURL:                   raw.RedisURL,
		RedisFallbackToMemory:      raw.RedisFallbackToMemory,
		RedisConnectTimeout:        raw.RedisConnectTimeout,
		RedisOpTimeout:             raw.RedisOpTimeout,
		RedisKeyPrefix:             raw.RedisKeyPrefix,
		SessionTTL:                 raw.SessionTTL,
		SessionRetention:           raw.SessionRetention,
		CleanupInterval:            raw.CleanupInterval,
		DefaultTranscribeLanguage:  raw.DefaultTranscribeLanguage,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		AnthropicAPIKey:            raw.AnthropicAPIKey,
		AnthropicModel:             raw.AnthropicModel,
		OpenAIAPIKey:               raw.OpenAIAPIKey,
		OpenAITTSModel:             raw.OpenAITTSModel,
		OpenAITTSVoice:             raw.OpenAITTSVoice,
		OpenAITTSFormat:            raw.OpenAITTSFormat,
		ReportTimezone:             raw.ReportTimezone,
		SessionSummaryWebhookURL:   raw.SessionSummaryWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
