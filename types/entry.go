package types

import "time"

// TimedEntry is a cached value plus the wall-clock time it was written.
// Entries are never mutated after they are stored; a newer write replaces the whole entry.
type TimedEntry[V any] struct {
	Value     V
	WrittenAt time.Time
}
