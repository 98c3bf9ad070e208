package config

import (
	"testing"
	"time"
)

func TestLoadMedia_Defaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "NATS_URL", "REDIS_URL", "MEDIA_CACHE_TTL", "JWT_SECRET", "MEDIA_RATE_LIMIT", "MEDIA_RATE_WINDOW", "MEDIA_SEED", "MEDIA_API_PREFIX"} {
		t.Setenv(k, "")
	}
	cfg := LoadMedia()
	if cfg.DatabaseURL != "" || cfg.NATSURL != "" || cfg.RedisURL != "" {
		t.Fatalf("expected optional backends to be unset, got %+v", cfg)
	}
	if cfg.AuthEnabled() {
		t.Fatal("expected auth disabled")
	}
	if cfg.RateLimit != 600 || cfg.RateWindow != time.Minute {
		t.Fatalf("unexpected rate limit: %d/%s", cfg.RateLimit, cfg.RateWindow)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("expected 30s cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.APIPrefix != "/api" {
		t.Fatalf("expected /api, got %q", cfg.APIPrefix)
	}
}

func TestLoadMedia_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MEDIA_SEED", "25")
	t.Setenv("MEDIA_RATE_LIMIT", "0")

	cfg := LoadMedia()
	if !cfg.AuthEnabled() {
		t.Fatal("expected auth enabled")
	}
	if cfg.SeedCount != 25 {
		t.Fatalf("expected 25, got %d", cfg.SeedCount)
	}
	if cfg.RateLimit != 0 {
		t.Fatalf("expected rate limit disabled, got %d", cfg.RateLimit)
	}
}
