// Package cache keeps list pages of the media store in Redis. Every mutation
// bumps a generation counter, so stale pages are never served.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/media-catalog/internal/media"
	"github.com/example/media-catalog/internal/platform/metrics"
	"github.com/example/media-catalog/services/media/internal/store"
)

const genKey = "media:list:gen"

type cachedPage struct {
	Records []media.Record `json:"records"`
	Total   int            `json:"total"`
}

// CachedStore wraps a MediaStore. Redis failures fall back to the store.
type CachedStore struct {
	Store  store.MediaStore
	Client *redis.Client
	TTL    time.Duration
	Log    *zap.Logger
}

func New(url string, ttl time.Duration, s store.MediaStore, log *zap.Logger) (*CachedStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedStore{Store: s, Client: redis.NewClient(opt), TTL: ttl, Log: log}, nil
}

func (c *CachedStore) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *CachedStore) Close() error { return c.Client.Close() }

func (c *CachedStore) List(ctx context.Context, page, limit int) ([]media.Record, int, error) {
	key, err := c.pageKey(ctx, page, limit)
	if err != nil {
		metrics.CacheError()
		c.Log.Warn("list cache unavailable", zap.Error(err))
		return c.Store.List(ctx, page, limit)
	}

	if raw, err := c.Client.Get(ctx, key).Bytes(); err == nil {
		var cp cachedPage
		if err := json.Unmarshal(raw, &cp); err == nil {
			metrics.CacheHit()
			return cp.Records, cp.Total, nil
		}
		metrics.CacheError()
	} else if errors.Is(err, redis.Nil) {
		metrics.CacheMiss()
	} else {
		metrics.CacheError()
		c.Log.Warn("list cache get", zap.String("key", key), zap.Error(err))
	}

	records, total, err := c.Store.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	b, err := json.Marshal(cachedPage{Records: records, Total: total})
	if err == nil {
		if err := c.Client.Set(ctx, key, b, c.TTL).Err(); err != nil {
			c.Log.Warn("list cache set", zap.String("key", key), zap.Error(err))
		}
	}
	return records, total, nil
}

func (c *CachedStore) Create(ctx context.Context, f media.Fields) (media.Record, error) {
	rec, err := c.Store.Create(ctx, f)
	if err == nil {
		c.invalidate(ctx)
	}
	return rec, err
}

func (c *CachedStore) Update(ctx context.Context, id string, f media.Fields) (media.Record, error) {
	rec, err := c.Store.Update(ctx, id, f)
	if err == nil {
		c.invalidate(ctx)
	}
	return rec, err
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	err := c.Store.Delete(ctx, id)
	if err == nil {
		c.invalidate(ctx)
	}
	return err
}

func (c *CachedStore) pageKey(ctx context.Context, page, limit int) (string, error) {
	gen, err := c.Client.Get(ctx, genKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("media:list:%d:%d:%d", gen, page, limit), nil
}

func (c *CachedStore) invalidate(ctx context.Context) {
	if err := c.Client.Incr(ctx, genKey).Err(); err != nil {
		c.Log.Warn("list cache invalidate", zap.Error(err))
	}
}
