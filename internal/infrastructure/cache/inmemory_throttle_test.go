package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryThrottle_Allow(t *testing.T) {
	t.Run("allows requests up to the limit", func(t *testing.T) {
		throttle := NewInMemoryThrottle()
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			allowed, err := throttle.Allow(ctx, "otp:+233201234567", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := throttle.Allow(ctx, "otp:+233201234567", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		throttle := NewInMemoryThrottle()
		ctx := context.Background()

		allowed, err := throttle.Allow(ctx, "otp:+233201111111", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = throttle.Allow(ctx, "otp:+233202222222", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = throttle.Allow(ctx, "otp:+233201111111", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("resets the count after the window", func(t *testing.T) {
		throttle := NewInMemoryThrottle()

		current := time.Now()
		throttle.now = func() time.Time { return current }

		ctx := context.Background()

		allowed, err := throttle.Allow(ctx, "otp:+233201234567", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = throttle.Allow(ctx, "otp:+233201234567", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		current = current.Add(2 * time.Minute)

		allowed, err = throttle.Allow(ctx, "otp:+233201234567", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
