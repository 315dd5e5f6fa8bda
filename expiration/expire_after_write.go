package expiration

import "time"

/*
ExpireAfterWrite implements a fixed TTL counted from the moment an entry was written.
Reads do NOT extend the lifetime: an entry written at T is valid while now - T < TTL,
however often it is read in between.
*/
type ExpireAfterWrite struct {
	TTL time.Duration
}

// IsExpired reports whether the entry has reached its TTL. The boundary itself is stale.
func (e ExpireAfterWrite) IsExpired(writtenAt, now time.Time) bool {
	return now.Sub(writtenAt) >= e.TTL
}
