package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agriconnect/backend/internal/application/ai"
	"github.com/redis/go-redis/v9"
)

// RedisTranslationCache stores model translations in Redis so repeated
// texts are served without calling the model again
type RedisTranslationCache struct {
	client *redis.Client
}

// NewRedisTranslationCache creates a Redis-backed translation cache
func NewRedisTranslationCache(client *redis.Client) *RedisTranslationCache {
	return &RedisTranslationCache{client: client}
}

// Get returns the cached translation and whether the key was present
func (c *RedisTranslationCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read translation cache: %w", err)
	}
	return value, true, nil
}

// Set stores a translation with a time to live
func (c *RedisTranslationCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write translation cache: %w", err)
	}
	return nil
}

// Ensure RedisTranslationCache implements TranslationCache
var _ ai.TranslationCache = (*RedisTranslationCache)(nil)
