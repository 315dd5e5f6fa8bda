package cache

import (
	"fmt"
	"sync"

	"github.com/krisalay/wardrobe-cache/eviction"
	"github.com/krisalay/wardrobe-cache/types"
)

/*
BoundedCache is a fixed-capacity key → value store with least-recently-used eviction.

It connects:
- a plain map holding the values
- an LRU policy holding the recency order
- metrics

Get and Put are O(1). The entry count never exceeds the capacity given to New.
A BoundedCache is safe for concurrent use.
*/
type BoundedCache[K comparable, V any] struct {
	mu sync.Mutex

	items    map[K]V
	order    eviction.Policy[K]
	capacity int

	metrics types.Metrics
	onEvict func(K, V)
}

// Option configures a BoundedCache.
type Option[K comparable, V any] func(*BoundedCache[K, V])

// WithMetrics reports hits, misses and evictions to m.
func WithMetrics[K comparable, V any](m types.Metrics) Option[K, V] {
	return func(c *BoundedCache[K, V]) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithOnEvict registers fn to be called, under the cache lock, for every evicted entry.
// fn must not call back into the cache.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *BoundedCache[K, V]) {
		c.onEvict = fn
	}
}

// New creates a BoundedCache holding at most capacity entries.
// A capacity below one is rejected rather than silently disabling caching.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) (*BoundedCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	c := &BoundedCache[K, V]{
		items:    make(map[K]V, capacity),
		order:    eviction.NewLRU[K](),
		capacity: capacity,
		metrics:  types.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

/*
Get retrieves the value stored for key.

On a hit the key becomes the most recently used entry.
On a miss nothing changes and ok is false; a miss is not an error.
*/
func (c *BoundedCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items[key]
	if !ok {
		c.metrics.Miss()
		return v, false
	}

	c.metrics.Hit()
	c.order.OnGet(key)
	return v, true
}

/*
Put stores value under key.

- Existing key: the value is replaced and the key becomes most recently used. Nothing is evicted.
- New key at capacity: exactly one entry, the least recently used, is evicted first.
*/
func (c *BoundedCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; !ok && len(c.items) >= c.capacity {
		c.evictOne()
	}

	c.items[key] = value
	c.order.OnPut(key)
}

// Remove deletes key if present. Removing a missing key is a no-op.
func (c *BoundedCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	c.order.Remove(key)
}

// Len returns the number of stored entries.
func (c *BoundedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the configured maximum number of entries.
func (c *BoundedCache[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns the stored keys from most to least recently used.
func (c *BoundedCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Keys()
}

// Purge removes every entry without calling the eviction callback.
func (c *BoundedCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]V, c.capacity)
	c.order = eviction.NewLRU[K]()
}

// evictOne must be called with the lock held.
func (c *BoundedCache[K, V]) evictOne() {
	k, ok := c.order.Evict()
	if !ok {
		return
	}
	v := c.items[k]
	delete(c.items, k)
	c.metrics.Eviction()
	if c.onEvict != nil {
		c.onEvict(k, v)
	}
}
