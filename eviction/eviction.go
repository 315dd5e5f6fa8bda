package eviction

/*
This file defines how a bounded cache decides what to remove when it runs out of space.
*/

/*
Policy is the interface an eviction strategy must follow.

The cache does NOT care how ordering is tracked internally.
It only reports touches and asks for a victim when it is full.
Implementations are not safe for concurrent use; the owning cache serializes calls.
*/
type Policy[K comparable] interface {

	// OnGet is called whenever a stored key is read.
	OnGet(K)

	// OnPut is called whenever a key is written, whether it is new or replaced.
	OnPut(K)

	// Remove is called when a key is explicitly removed (not evicted).
	Remove(K)

	// Evict picks the key that must leave, stops tracking it and returns it.
	// ok is false when nothing is tracked.
	Evict() (key K, ok bool)

	// Len returns how many keys are tracked.
	Len() int

	// Keys returns the tracked keys, the next victim last.
	Keys() []K
}
