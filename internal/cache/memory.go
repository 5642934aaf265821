package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process-local Cache. It backs tests and single-instance
// deployments started with REDIS_URL=memory://.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// re-check, a concurrent Set may have refreshed it
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (c *MemoryCache) Purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush removes every entry.
func (c *MemoryCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}
