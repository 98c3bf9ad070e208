package config

import (
	"time"

	"github.com/example/media-catalog/internal/platform/config"
)

// UIConfig holds the catalog UI settings.
type UIConfig struct {
	APIURL     string
	APITimeout time.Duration
	// APIToken is sent as-is. When empty and JWTSecret is set, a short-lived
	// token is signed per request instead.
	APIToken   string
	JWTSecret  []byte
	JWTSubject string

	// BreakerFailures consecutive failures open the circuit; 0 disables it.
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	PageSize      int
	Dedupe        bool
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

func LoadUI() UIConfig {
	return UIConfig{
		APIURL:          config.String("MEDIA_API_URL", "http://localhost:3001/api"),
		APITimeout:      config.Duration("MEDIA_API_TIMEOUT", 10*time.Second),
		APIToken:        config.String("MEDIA_API_TOKEN", ""),
		JWTSecret:       []byte(config.String("MEDIA_JWT_SECRET", "")),
		JWTSubject:      config.String("MEDIA_JWT_SUBJECT", "catalog-ui"),
		BreakerFailures: uint32(config.Int("MEDIA_API_CB_FAILURES", 5)),
		BreakerTimeout:  config.Duration("MEDIA_API_CB_TIMEOUT", 30*time.Second),
		PageSize:        max(config.Int("CATALOG_PAGE_SIZE", 10), 1),
		Dedupe:          config.Bool("CATALOG_DEDUPE_ON_APPEND", true),
		SessionTTL:      config.Duration("CATALOG_SESSION_TTL", 30*time.Minute),
		SweepInterval:   config.Duration("CATALOG_SESSION_SWEEP", time.Minute),
	}
}
