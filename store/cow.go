package store

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/krisalay/wardrobe-cache/types"
)

/*
COW is a string-keyed map of TimedEntry values using "Copy-On-Write".

- Readers always see an immutable snapshot and never take a lock
- Writers build a NEW map under a mutex and swap it in atomically

Every write costs O(n), so COW suits maps whose size is bounded, for example
by expiry plus PurgeExpired. Use Locked for maps that only grow.
*/
type COW[V any] struct {
	// data holds the current map[string]types.TimedEntry[V].
	data atomic.Pointer[map[string]types.TimedEntry[V]]

	// mu serializes writers so concurrent copies cannot lose each other's updates.
	mu sync.Mutex
}

func NewCOW[V any]() *COW[V] {
	s := &COW[V]{}
	m := make(map[string]types.TimedEntry[V])
	s.data.Store(&m)
	return s
}

// Get retrieves an entry without locking.
func (s *COW[V]) Get(key string) (types.TimedEntry[V], bool) {
	ent, ok := (*s.data.Load())[key]
	return ent, ok
}

// Put inserts or replaces the entry for key.
func (s *COW[V]) Put(key string, ent types.TimedEntry[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := *s.data.Load()
	n := make(map[string]types.TimedEntry[V], len(old)+1)
	for k, v := range old {
		n[k] = v
	}
	n[key] = ent
	s.data.Store(&n)
}

// Delete removes key. Deleting a missing key does not copy the map.
func (s *COW[V]) Delete(key string) {
	s.DeleteFunc(func(k string, _ types.TimedEntry[V]) bool { return k == key })
}

// DeleteFunc removes every entry for which fn returns true and reports how many were removed.
func (s *COW[V]) DeleteFunc(fn func(string, types.TimedEntry[V]) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := *s.data.Load()
	n := make(map[string]types.TimedEntry[V], len(old))
	for k, v := range old {
		if !fn(k, v) {
			n[k] = v
		}
	}
	removed := len(old) - len(n)
	if removed > 0 {
		s.data.Store(&n)
	}
	return removed
}

// Clear drops every entry.
func (s *COW[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := make(map[string]types.TimedEntry[V])
	s.data.Store(&n)
}

// Len returns how many entries are stored.
func (s *COW[V]) Len() int {
	return len(*s.data.Load())
}

// Keys returns the stored keys in ascending order.
func (s *COW[V]) Keys() []string {
	m := *s.data.Load()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
