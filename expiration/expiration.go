// This file defines how cache entries expire over time.

package expiration

import "time"

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
expiration logic into the caches, each cache is given a strategy so the rule can be swapped.

Expiration is always lazy: a strategy is consulted when an entry is read, entries are
never deleted on a timer unless a sweep is explicitly configured.
*/
type Strategy interface {

	// IsExpired reports whether an entry written at writtenAt is stale at now.
	IsExpired(writtenAt, now time.Time) bool
}

// Never keeps entries for the lifetime of the process.
type Never struct{}

func (Never) IsExpired(time.Time, time.Time) bool { return false }
