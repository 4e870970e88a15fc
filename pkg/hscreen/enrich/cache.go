package enrich

import (
	"sync"
	"time"
)

// Cache is a TTL+LRU keyed store. The zero size means unbounded.
type Cache[V any] struct {
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]cacheEntry[V]
	order []string // simple LRU order, oldest at index 0
}

type cacheEntry[V any] struct {
	at time.Time
	v  V
}

func NewCache[V any](ttl time.Duration, size int) *Cache[V] {
	return &Cache[V]{ttl: ttl, size: size, now: time.Now, items: make(map[string]cacheEntry[V])}
}

// Get returns a live entry and refreshes its LRU position.
func (c *Cache[V]) Get(k string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	ent, ok := c.items[k]
	if !ok {
		return zero, false
	}
	if c.now().Sub(ent.at) > c.ttl {
		// expired; drop
		delete(c.items, k)
		c.removeFromOrderLocked(k)
		return zero, false
	}
	c.touchLocked(k)
	return ent.v, true
}

// Put stores v under k, evicting the least recently used entries over size.
func (c *Cache[V]) Put(k string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[k]; ok {
		c.removeFromOrderLocked(k)
	}
	c.items[k] = cacheEntry[V]{at: c.now(), v: v}
	c.order = append(c.order, k)
	for c.size > 0 && len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[V]) touchLocked(k string) {
	c.removeFromOrderLocked(k)
	c.order = append(c.order, k)
}

func (c *Cache[V]) removeFromOrderLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
