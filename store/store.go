package store

import "github.com/krisalay/wardrobe-cache/types"

/*
Store is a string-keyed map of TimedEntry values safe for concurrent use.

Two implementations trade read cost against write cost:
- COW: lock-free reads, every write copies the map
- Locked: reads share a RWMutex, writes are O(1)
*/
type Store[V any] interface {
	Get(key string) (types.TimedEntry[V], bool)
	Put(key string, ent types.TimedEntry[V])
	Delete(key string)
	DeleteFunc(fn func(string, types.TimedEntry[V]) bool) int
	Clear()
	Len() int
	Keys() []string
}

var (
	_ Store[int] = (*COW[int])(nil)
	_ Store[int] = (*Locked[int])(nil)
)
