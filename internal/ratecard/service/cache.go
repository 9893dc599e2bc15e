package service

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/ratecard/domain"
)

// resolveCache keeps recently resolved rate card entries for a short
// TTL so bulk submissions do not hit the database once per record.
// Mutating operations on the rate card invalidate the tenant's slice
// of the cache.
type resolveCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
}

type cacheKey struct {
	tenantID  snowflake.ID
	productID snowflake.ID
	taskID    snowflake.ID
}

type cacheEntry struct {
	value     domain.ProductTask
	expiresAt time.Time
}

func newResolveCache(ttl time.Duration) *resolveCache {
	return &resolveCache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *resolveCache) get(key cacheKey, now time.Time) (*domain.ProductTask, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || now.After(entry.expiresAt) {
		return nil, false
	}
	value := entry.value
	return &value, true
}

func (c *resolveCache) put(key cacheKey, value domain.ProductTask, now time.Time) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
}

func (c *resolveCache) invalidateTenant(tenantID snowflake.ID) {
	c.mu.Lock()
	for key := range c.entries {
		if key.tenantID == tenantID {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
