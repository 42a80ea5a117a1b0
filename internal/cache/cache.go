package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"anydl/internal/model"
	"anydl/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MetadataCache holds extracted video metadata in Redis so repeated requests
// for the same URL skip the extractor. A nil client disables it; every method
// degrades to a miss.
type MetadataCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. An empty addr returns a disabled cache.
func New(cfg *model.RedisConfig) *MetadataCache {
	if cfg.Addr == "" {
		return &MetadataCache{}
	}
	return &MetadataCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: time.Duration(cfg.TTLSeconds) * time.Second,
	}
}

// Enabled reports whether a Redis backend is configured.
func (c *MetadataCache) Enabled() bool {
	return c.client != nil
}

func key(videoURL string) string {
	return fmt.Sprintf("anydl:meta:%x", md5.Sum([]byte(videoURL)))
}

// Get returns cached metadata for a URL, or nil on a miss.
func (c *MetadataCache) Get(ctx context.Context, videoURL string) *model.VideoInfo {
	if c.client == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, key(videoURL)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Logger.Warn("Metadata cache read failed", zap.Error(err))
		}
		return nil
	}

	var info model.VideoInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		logger.Logger.Warn("Metadata cache entry corrupt", zap.String("url", videoURL), zap.Error(err))
		return nil
	}
	return &info
}

// Put stores metadata for a URL. Failures are logged and ignored; the cache
// is an optimization, not a dependency.
func (c *MetadataCache) Put(ctx context.Context, videoURL string, info *model.VideoInfo) {
	if c.client == nil || info == nil {
		return
	}

	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(videoURL), raw, c.ttl).Err(); err != nil {
		logger.Logger.Warn("Metadata cache write failed", zap.Error(err))
	}
}

// Close releases the Redis connection.
func (c *MetadataCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
