package store

import (
	"sort"
	"sync"

	"github.com/krisalay/wardrobe-cache/types"
)

// Locked is a map guarded by a RWMutex. Writes stay O(1) however large the map grows,
// which suits stores that are never expired or purged.
type Locked[V any] struct {
	mu   sync.RWMutex
	data map[string]types.TimedEntry[V]
}

func NewLocked[V any]() *Locked[V] {
	return &Locked[V]{data: make(map[string]types.TimedEntry[V])}
}

func (s *Locked[V]) Get(key string) (types.TimedEntry[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ent, ok := s.data[key]
	return ent, ok
}

func (s *Locked[V]) Put(key string, ent types.TimedEntry[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = ent
}

func (s *Locked[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// DeleteFunc removes every entry for which fn returns true and reports how many were removed.
func (s *Locked[V]) DeleteFunc(fn func(string, types.TimedEntry[V]) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, v := range s.data {
		if fn(k, v) {
			delete(s.data, k)
			removed++
		}
	}
	return removed
}

func (s *Locked[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]types.TimedEntry[V])
}

func (s *Locked[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns the stored keys in ascending order.
func (s *Locked[V]) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}
