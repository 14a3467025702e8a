package cache

import (
	"context"
	"sync"
	"time"

	commsapp "github.com/agriconnect/backend/internal/application/comms"
)

type throttleWindow struct {
	count    int
	resetsAt time.Time
}

// InMemoryThrottle implements a fixed-window rate limit in process
// memory. This is suitable for single-instance deployments and testing.
// WARNING: In-memory throttles do not share counts across process
// instances, which weakens the limit in distributed deployments.
type InMemoryThrottle struct {
	mu      sync.Mutex
	windows map[string]*throttleWindow
	now     func() time.Time
}

// NewInMemoryThrottle creates an in-memory throttle
func NewInMemoryThrottle() *InMemoryThrottle {
	return &InMemoryThrottle{
		windows: make(map[string]*throttleWindow),
		now:     time.Now,
	}
}

// Allow counts the request against the key's current window and reports
// whether it fits within the limit
func (t *InMemoryThrottle) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	w, ok := t.windows[key]
	if !ok || now.After(w.resetsAt) {
		w = &throttleWindow{resetsAt: now.Add(window)}
		t.windows[key] = w
	}

	w.count++
	return w.count <= limit, nil
}

// Ensure InMemoryThrottle implements Throttle
var _ commsapp.Throttle = (*InMemoryThrottle)(nil)
