package search

import (
	"container/list"
	"sync"
	"time"
)

const (
	// CacheSize is the fixed capacity of the query cache.
	CacheSize = 32
	// CacheTTL is how long a cached result set stays valid. An expired
	// entry is treated as a miss even while still resident.
	CacheTTL = 5 * time.Minute
)

type cacheEntry struct {
	key       string
	results   []Result
	expiresAt time.Time
}

// queryCache maps canonical query keys to result sets. Eviction is by
// insertion order (the oldest inserted key goes first); a get does not
// refresh an entry's position.
type queryCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List // front = newest insertion
	now     func() time.Time
}

func newQueryCache(maxSize int, ttl time.Duration) *queryCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &queryCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

func (c *queryCache) get(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().After(e.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	return e.results, true
}

func (c *queryCache) put(key string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		// Re-inserting counts as a fresh insertion.
		c.order.Remove(el)
		delete(c.entries, key)
	}

	for len(c.entries) >= c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}

	e := &cacheEntry{key: key, results: results}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[key] = c.order.PushFront(e)
}

func (c *queryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
