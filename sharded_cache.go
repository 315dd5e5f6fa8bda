package cache

import (
	"fmt"

	"github.com/krisalay/wardrobe-cache/shard"
	"github.com/krisalay/wardrobe-cache/types"
)

/*
ShardedCache splits a string-keyed bounded cache into independent BoundedCaches.

Each shard has its own lock and its own recency order, so LRU eviction is exact
per shard and approximate across the whole cache. Use it for hot caches where a
single lock would be contended; use BoundedCache when global LRU order matters.
*/
type ShardedCache[V any] struct {
	// shards are the actual storage units. Each shard is an independent bounded cache.
	shards []*BoundedCache[string, V]

	// selector decides which shard a key should go to.
	selector shard.Selector

	// capacity is the total number of entries, divided across shards.
	capacity int
}

// NewShardedCache creates a cache of at most capacity entries spread over the given number of shards.
// Shard sizes differ by at most one and add up to capacity.
func NewShardedCache[V any](shards, capacity int, metrics types.Metrics) (*ShardedCache[V], error) {
	if shards <= 0 {
		return nil, fmt.Errorf("%w: shard count %d", ErrInvalidCapacity, shards)
	}
	if capacity < shards {
		return nil, fmt.Errorf("%w: capacity %d is below shard count %d", ErrInvalidCapacity, capacity, shards)
	}

	per, extra := capacity/shards, capacity%shards
	s := make([]*BoundedCache[string, V], shards)
	for i := range s {
		size := per
		if i < extra {
			size++
		}
		bc, err := New[string, V](size, WithMetrics[string, V](metrics))
		if err != nil {
			return nil, err
		}
		s[i] = bc
	}

	return &ShardedCache[V]{
		shards:   s,
		selector: shard.HashSelector{},
		capacity: capacity,
	}, nil
}

// Get retrieves a value from the shard that owns key.
func (c *ShardedCache[V]) Get(key string) (V, bool) {
	return c.shardFor(key).Get(key)
}

// Put stores a value in the shard that owns key, evicting that shard's LRU entry when it is full.
func (c *ShardedCache[V]) Put(key string, value V) {
	c.shardFor(key).Put(key, value)
}

// Remove deletes a key from the cache immediately.
func (c *ShardedCache[V]) Remove(key string) {
	c.shardFor(key).Remove(key)
}

// Len returns the number of entries across all shards.
func (c *ShardedCache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.Len()
	}
	return n
}

// Capacity returns the configured total capacity.
func (c *ShardedCache[V]) Capacity() int {
	return c.capacity
}

// Purge empties every shard.
func (c *ShardedCache[V]) Purge() {
	for _, s := range c.shards {
		s.Purge()
	}
}

func (c *ShardedCache[V]) shardFor(key string) *BoundedCache[string, V] {
	return shard.Select(c.selector, key, c.shards)
}
