package cache

import (
	"context"
	"fmt"
	"time"

	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/redis/go-redis/v9"
)

// RedisThrottle implements a fixed-window rate limit backed by Redis.
// This is suitable for distributed deployments where multiple instances
// must share request counts.
type RedisThrottle struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisThrottle creates a Redis-backed throttle
func NewRedisThrottle(client *redis.Client, keyPrefix string) *RedisThrottle {
	if keyPrefix == "" {
		keyPrefix = "throttle:"
	}
	return &RedisThrottle{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Allow increments the counter for the key's current window and reports
// whether the request fits within the limit. The window expiry is set
// together with the first increment so counters never leak.
func (t *RedisThrottle) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := t.keyPrefix + key

	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count throttled request: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}

// Ensure RedisThrottle implements Throttle
var _ commsapp.Throttle = (*RedisThrottle)(nil)
