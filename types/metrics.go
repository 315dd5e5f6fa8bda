package types

import "sync/atomic"

// This file defines how the caches report what they are doing.

/*
Metrics is an interface that defines what the caches want to measure.
Each method represents an event in the cache lifecycle. The caches call these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when the cache successfully returns a stored value.
	Hit()

	// Miss is called when the cache does NOT find a usable value and has to ask the provider.
	Miss()

	// Eviction is called when a key is removed because the cache is full and needs space.
	Eviction()

	// Expire is called when a stored value is found but has passed its TTL.
	Expire()

	// Fallback is called when a provider failed and a default value was served instead.
	Fallback()

	// Retry is called every time a provider call is attempted again after a failure.
	Retry()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

Callers that do not care about metrics still get a working cache without
nil checks on every hot path.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Expire()   {}
func (NoopMetrics) Fallback() {}
func (NoopMetrics) Retry()    {}

// Counters is a Metrics implementation backed by atomic counters.
// It is safe for concurrent use and can be shared by several caches.
type Counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	expired   atomic.Int64
	fallbacks atomic.Int64
	retries   atomic.Int64
}

func (c *Counters) Hit()      { c.hits.Add(1) }
func (c *Counters) Miss()     { c.misses.Add(1) }
func (c *Counters) Eviction() { c.evictions.Add(1) }
func (c *Counters) Expire()   { c.expired.Add(1) }
func (c *Counters) Fallback() { c.fallbacks.Add(1) }
func (c *Counters) Retry()    { c.retries.Add(1) }

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Expired   int64
	Fallbacks int64
	Retries   int64
}

// Snapshot reads every counter. Counters may move between individual reads.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Expired:   c.expired.Load(),
		Fallbacks: c.fallbacks.Load(),
		Retries:   c.retries.Load(),
	}
}
