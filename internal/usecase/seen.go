package usecase

import (
	"sync"
	"time"
)

// seenCache remembers keys for a TTL so repeated work per key (re-recording
// a signed-in user on every request) happens at most once per period.
type seenCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
}

func newSeenCache(ttl time.Duration) *seenCache {
	return &seenCache{
		entries: make(map[string]time.Time),
		ttl:     ttl,
	}
}

func (c *seenCache) fresh(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt, ok := c.entries[key]
	if !ok {
		return false
	}
	if now.After(expiresAt) {
		delete(c.entries, key)
		return false
	}
	return true
}

func (c *seenCache) mark(key string, now time.Time) {
	c.mu.Lock()
	c.entries[key] = now.Add(c.ttl)
	c.mu.Unlock()
}
