package domainrep

import (
	"sync"
	"time"
)

// cache is a small in-memory TTL cache keyed by domain. Grounded on the
// mutex-guarded bounded-map idiom used throughout the teacher's context
// tracking code; a 7-day TTL matches how slowly domain reputation
// signals change.
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result    Result
	expiresAt time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *cache) get(domain string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[domain]
	if !ok || time.Now().After(entry.expiresAt) {
		return Result{}, false
	}
	return entry.result, true
}

func (c *cache) set(domain string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[domain] = cacheEntry{result: result, expiresAt: time.Now().Add(c.ttl)}
}
