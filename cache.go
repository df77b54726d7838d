package formula

import (
	"container/list"
	"sync"
)

// DefaultCapacity is the number of compiled formulas kept by the
// process-wide formula cache.
const DefaultCapacity = 64

// Cache memoizes values by key up to a maximum number of entries. When an
// insertion exceeds the capacity, the entry inserted earliest is evicted.
// Hits do not refresh an entry, so eviction is first-in first-out rather than
// least recently used.
//
// A single lock guards the cache, and the compute function of a miss runs
// while it is held. At most one computation happens at a time.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	items   map[K]*list.Element
	order   *list.List
	max     int
	stats   CacheStats
	onEvict func(key K, value V)
}

// CacheStats counts cache activity since creation or the last Clear.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewCache creates a cache holding at most max entries. A max of zero or
// less means the cache is unbounded.
func NewCache[K comparable, V any](max int) *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*list.Element),
		order: list.New(),
		max:   max,
	}
}

// OnEvict sets a function called with each entry evicted for capacity. It is
// called with the cache locked and must not use the cache. Returns c for
// chaining.
func (c *Cache[K, V]) OnEvict(f func(key K, value V)) *Cache[K, V] {
	c.mu.Lock()
	c.onEvict = f
	c.mu.Unlock()
	return c
}

// GetOrCompute returns the value cached for key. On a miss, compute is called
// to produce it. If compute returns an error, nothing is stored and the error
// is returned.
func (c *Cache[K, V]) GetOrCompute(key K, compute func(K) (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.stats.Hits++
		return e.Value.(*cacheEntry[K, V]).value, nil
	}
	c.stats.Misses++
	v, err := compute(key)
	if err != nil {
		return v, err
	}
	c.items[key] = c.order.PushBack(&cacheEntry[K, V]{key: key, value: v})
	if c.max > 0 && c.order.Len() > c.max {
		c.evictOldest()
	}
	return v, nil
}

// Get returns the value cached for key without computing it.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		return e.Value.(*cacheEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// evictOldest removes the earliest inserted entry, which is always at the
// front of the order list.
func (c *Cache[K, V]) evictOldest() {
	e := c.order.Front()
	if e == nil {
		return
	}
	ent := c.order.Remove(e).(*cacheEntry[K, V])
	delete(c.items, ent.key)
	c.stats.Evictions++
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}

// Clear removes every entry and resets the statistics.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element)
	c.order.Init()
	c.stats = CacheStats{}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cap returns the maximum number of entries, or 0 if unbounded.
func (c *Cache[K, V]) Cap() int {
	if c.max < 0 {
		return 0
	}
	return c.max
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Keys returns the cached keys from oldest to newest insertion.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*cacheEntry[K, V]).key)
	}
	return keys
}
