// Package dedupe remembers which version of a document the worker indexed last.
package dedupe

import (
	"sync"
	"time"
)

type entry struct {
	id string
	ts time.Time
}

type version struct {
	fingerprint string
	ts          time.Time
}

// Cache maps document ids to the fingerprint of their last indexed body.
// It holds at most capacity ids and forgets them after ttl.
type Cache struct {
	mu       sync.Mutex
	items    map[string]version
	order    []entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]version, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Unchanged reports whether id was indexed with the same fingerprint inside
// the ttl window. A changed body under a known id is not a duplicate.
func (c *Cache) Unchanged(id, fingerprint string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items[id]
	return ok && v.fingerprint == fingerprint && now.Sub(v.ts) <= c.ttl
}

// Remember records the fingerprint indexed under id.
func (c *Cache) Remember(id, fingerprint string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[id] = version{fingerprint: fingerprint, ts: now}
	c.order = append(c.order, entry{id: id, ts: now})
	c.compact(now)
}

// Len returns the number of remembered ids.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		// A later Remember of the same id superseded this entry.
		if v, ok := c.items[oldest.id]; ok && v.ts.Equal(oldest.ts) {
			delete(c.items, oldest.id)
		}
	}
}
