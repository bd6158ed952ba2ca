package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}
	if cfg.DatabaseURL != "data/sessions.db" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.SessionTTL)
	}
	if cfg.DatabaseLockTimeout != 5*time.Second {
		t.Fatalf("unexpected lock timeout %s", cfg.DatabaseLockTimeout)
	}
	if !cfg.RedisFallbackToMemory {
		t.Fatal("expected in-memory fallback to default on")
	}
	if cfg.RedisKeyPrefix != "session:" {
		t.Fatalf("unexpected key prefix %q", cfg.RedisKeyPrefix)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/interviews")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_RETENTION", "72h")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("REDIS_FALLBACK_TO_MEMORY", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if !cfg.UsesPostgres() {
		t.Fatal("expected postgres database url")
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.SessionRetention != 72*time.Hour {
		t.Fatalf("unexpected durations ttl=%s retention=%s", cfg.SessionTTL, cfg.SessionRetention)
	}
	if cfg.RedisFallbackToMemory {
		t.Fatal("expected fallback disabled")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for invalid duration")
	}
}

func TestLoad_RejectsMandatoryRedisWithoutURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_FALLBACK_TO_MEMORY", "false")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}
}
