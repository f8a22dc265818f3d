package plandata

import (
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/choosepower/plan-finder/internal/models"
)

// ResultCache is a bounded TTL cache for filter results, keyed by a hash
// of the filter parameters. It is auxiliary: a miss only costs a
// re-filter, so eviction is deliberately coarse.
type ResultCache struct {
	ttl time.Duration
	cap int

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result   models.FilterResult
	storedAt time.Time
}

func NewResultCache(ttl time.Duration, capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &ResultCache{
		ttl:     ttl,
		cap:     capacity,
		entries: make(map[string]cacheEntry, capacity),
	}
}

func (c *ResultCache) Get(key string) (models.FilterResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return models.FilterResult{}, false
	}
	if time.Since(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return models.FilterResult{}, false
	}
	return e.result, true
}

func (c *ResultCache) Set(key string, result models.FilterResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.cap {
		c.evictOldestLocked()
	}
	c.entries[key] = cacheEntry{result: result, storedAt: time.Now()}
}

func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked drops expired entries first, then the single oldest
// entry if the cache is still full.
func (c *ResultCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time

	for key, e := range c.entries {
		if time.Since(e.storedAt) > c.ttl {
			delete(c.entries, key)
			continue
		}
		if oldestKey == "" || e.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.storedAt
		}
	}

	if len(c.entries) >= c.cap && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// CacheKey hashes a city and serialized filter query into a stable key.
func CacheKey(city, serializedFilter string) string {
	h := fnv.New64a()
	h.Write([]byte(city))
	h.Write([]byte{0})
	h.Write([]byte(serializedFilter))
	return strconv.FormatUint(h.Sum64(), 16)
}
