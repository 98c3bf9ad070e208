package config

import (
	"time"

	"github.com/example/media-catalog/internal/platform/config"
)

// MediaConfig holds the media API settings. Every backing service is optional
// so the API runs standalone in development.
type MediaConfig struct {
	DatabaseURL string // empty: in-memory store
	NATSURL     string // empty: events disabled
	RedisURL    string // empty: no list cache
	CacheTTL    time.Duration
	JWTSecret   []byte // empty: no auth
	RateLimit   int    // requests per window per IP; 0 disables
	RateWindow  time.Duration
	SeedCount   int // demo records for the in-memory store
	APIPrefix   string
}

func LoadMedia() MediaConfig {
	return MediaConfig{
		DatabaseURL: config.String("DATABASE_URL", ""),
		NATSURL:     config.String("NATS_URL", ""),
		RedisURL:    config.String("REDIS_URL", ""),
		CacheTTL:    config.Duration("MEDIA_CACHE_TTL", 30*time.Second),
		JWTSecret:   []byte(config.String("JWT_SECRET", "")),
		RateLimit:   config.Int("MEDIA_RATE_LIMIT", 600),
		RateWindow:  config.Duration("MEDIA_RATE_WINDOW", time.Minute),
		SeedCount:   config.Int("MEDIA_SEED", 0),
		APIPrefix:   config.String("MEDIA_API_PREFIX", "/api"),
	}
}

// AuthEnabled reports whether requests must carry a bearer token.
func (c MediaConfig) AuthEnabled() bool {
	return len(c.JWTSecret) > 0
}
