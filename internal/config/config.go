package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Env                        string
	DatabaseURL                string
	DatabaseLockTimeout        time.Duration
	RedisURL                   string
	RedisFallbackToMemory      bool
	RedisConnectTimeout        time.Duration
	RedisOpTimeout             time.Duration
	RedisKeyPrefix             string
	SessionTTL                 time.Duration
	SessionRetention           time.Duration
	CleanupInterval            time.Duration
	DefaultTranscribeLanguage  string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	AnthropicAPIKey            string
	AnthropicModel             string
	OpenAIAPIKey               string
	OpenAITTSModel             string
	OpenAITTSVoice             string
	OpenAITTSFormat            string
	ReportTimezone             string
	SessionSummaryWebhookURL   string
}

// Validate checks what every command needs: storage, cache and maintenance
// settings. Collaborator credentials are checked by ValidateRehearsal.
func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	for _, d := range c.positiveDurationChecks() {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}
	if c.RedisURL == "" && !c.RedisFallbackToMemory {
		return fmt.Errorf("REDIS_URL is required when REDIS_FALLBACK_TO_MEMORY=false")
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE is invalid: %w", err)
	}
	return nil
}

// ValidateRehearsal additionally requires the speech, language model and
// voice credentials used by the rehearse command.
func (c *Config) ValidateRehearsal() error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, req := range c.rehearsalFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

type durationEnvField struct {
	name  string
	value time.Duration
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "REDIS_KEY_PREFIX", value: c.RedisKeyPrefix},
		{name: "REPORT_TIMEZONE", value: c.ReportTimezone},
	}
}

func (c *Config) positiveDurationChecks() []durationEnvField {
	return []durationEnvField{
		{name: "DATABASE_LOCK_TIMEOUT", value: c.DatabaseLockTimeout},
		{name: "REDIS_CONNECT_TIMEOUT", value: c.RedisConnectTimeout},
		{name: "REDIS_OP_TIMEOUT", value: c.RedisOpTimeout},
		{name: "SESSION_TTL", value: c.SessionTTL},
		{name: "SESSION_RETENTION", value: c.SessionRetention},
		{name: "CLEANUP_INTERVAL", value: c.CleanupInterval},
	}
}

func (c *Config) rehearsalFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DEFAULT_TRANSCRIBE_LANGUAGE", value: c.DefaultTranscribeLanguage},
		{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
		{name: "GOOGLE_CLOUD_CREDENTIALS_JSON", value: c.GoogleCloudCredentialsJSON},
		{name: "ANTHROPIC_API_KEY", value: c.AnthropicAPIKey},
		{name: "ANTHROPIC_MODEL", value: c.AnthropicModel},
		{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UsesPostgres reports whether DATABASE_URL points at PostgreSQL rather than
// a SQLite file path.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}
