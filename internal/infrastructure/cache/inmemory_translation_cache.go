package cache

import (
	"context"
	"sync"
	"time"

	"github.com/agriconnect/backend/internal/application/ai"
)

type cachedTranslation struct {
	value     string
	expiresAt time.Time
}

// InMemoryTranslationCache stores translations in process memory.
// This is suitable for single-instance deployments and testing.
type InMemoryTranslationCache struct {
	mu      sync.RWMutex
	entries map[string]cachedTranslation
	now     func() time.Time
}

// NewInMemoryTranslationCache creates an in-memory translation cache
func NewInMemoryTranslationCache() *InMemoryTranslationCache {
	return &InMemoryTranslationCache{
		entries: make(map[string]cachedTranslation),
		now:     time.Now,
	}
}

// Get returns the cached translation and whether the key was present
func (c *InMemoryTranslationCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores a translation with a time to live
func (c *InMemoryTranslationCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cachedTranslation{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Ensure InMemoryTranslationCache implements TranslationCache
var _ ai.TranslationCache = (*InMemoryTranslationCache)(nil)
