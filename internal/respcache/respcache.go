// Package respcache is a freshness-window cache of raw API response bodies,
// keyed by request fingerprint. A fresh hit means the upstream call is
// skipped entirely and no rate-limit quota is consumed.
package respcache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a stored response stays fresh.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value     []byte
	fetchedAt time.Time
}

// Cache maps request fingerprints to previously fetched response bodies.
// Expiry is lazy: stale entries are reported absent on read but stay in the
// map until overwritten. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

// New creates a Cache with the default freshness window.
func New() *Cache {
	return NewWithTTL(DefaultTTL)
}

// NewWithTTL creates a Cache with an explicit freshness window.
func NewWithTTL(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the stored body for key iff an entry exists and is younger
// than the freshness window at now. A stale entry is not deleted; it is
// simply not reported.
func (c *Cache) Get(key string, now time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// Put stores or replaces the body for key with fetchedAt = now.
func (c *Cache) Put(key string, value []byte, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, fetchedAt: now}
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint builds the cache key for one logical lookup. The identifier is
// lower-cased so the same player looked up with different casing shares one
// entry.
func Fingerprint(kind, region, identifier string) string {
	return fmt.Sprintf("%s-%s-%s", kind, region, strings.ToLower(identifier))
}
