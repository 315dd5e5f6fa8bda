package shard

import "github.com/cespare/xxhash/v2"

/*
This file decides HOW a cache key is assigned to a shard.
If every request went to the same shard, that shard's lock would become a bottleneck.
*/

// Selector maps a key to a shard index in [0, n).
type Selector interface {
	Index(key string, n int) int
}

// HashSelector spreads keys with xxhash, a fast non-cryptographic 64-bit hash.
type HashSelector struct{}

// Index returns the shard index for key. n must be positive.
func (HashSelector) Index(key string, n int) int {
	return int(xxhash.Sum64String(key) % uint64(n))
}

// Select returns the shard that owns key.
func Select[T any](s Selector, key string, shards []T) T {
	return shards[s.Index(key, len(shards))]
}
