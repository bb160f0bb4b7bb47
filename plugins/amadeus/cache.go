package amadeus

import (
	"context"
	"sync"
	"time"
)

// ResponseCache stores raw successful Amadeus responses by request key.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// MemoryCache is an in-process ResponseCache with per-entry expiry.
type MemoryCache struct {
	data map[string]cacheItem
	mu   sync.RWMutex
	now  func() time.Time
}

type cacheItem struct {
	value      []byte
	expiryTime time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]cacheItem),
		now:  time.Now,
	}
}

// Get returns a live entry. Expired entries are dropped on read.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	item, found := c.data[key]
	c.mu.RUnlock()
	if !found {
		return nil, false
	}

	if c.now().After(item.expiryTime) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.value, true
}

// Set stores value for ttl. A non-positive ttl is ignored.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheItem{
		value:      value,
		expiryTime: c.now().Add(ttl),
	}
}
