package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTranslationCache(t *testing.T) {
	t.Run("returns stored values", func(t *testing.T) {
		cache := NewInMemoryTranslationCache()
		ctx := context.Background()

		err := cache.Set(ctx, "ai:translation:abc", "Akwaaba", time.Hour)
		require.NoError(t, err)

		value, ok, err := cache.Get(ctx, "ai:translation:abc")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Akwaaba", value)
	})

	t.Run("misses unknown keys", func(t *testing.T) {
		cache := NewInMemoryTranslationCache()

		_, ok, err := cache.Get(context.Background(), "ai:translation:missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expires values after their TTL", func(t *testing.T) {
		cache := NewInMemoryTranslationCache()

		current := time.Now()
		cache.now = func() time.Time { return current }

		ctx := context.Background()

		err := cache.Set(ctx, "ai:translation:abc", "Akwaaba", time.Minute)
		require.NoError(t, err)

		current = current.Add(2 * time.Minute)

		_, ok, err := cache.Get(ctx, "ai:translation:abc")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
