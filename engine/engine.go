package engine

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/krisalay/wardrobe-cache/expiration"
	"github.com/krisalay/wardrobe-cache/store"
	"github.com/krisalay/wardrobe-cache/types"
)

/*
Engine is the read-through core shared by the provider-backed caches.

It decides:
- Whether a stored entry is still usable (lazy expiration)
- How a miss is turned into exactly one provider call per key (single-flight)
- When results are stored, and how metrics are recorded

It does NOT:
- Know what the provider is
- Retry, time out or fall back; callers wrap their LoadFunc for that
*/
type Engine[V any] struct {

	// Expiration decides when an entry is "too old". Entries are never removed
	// because of it; a stale entry is simply treated as a miss.
	Expiration expiration.Strategy

	// Metrics records hits, misses and expirations.
	Metrics types.Metrics

	store store.Store[V]

	// sf coalesces concurrent loads of the same key into one provider call.
	sf singleflight.Group

	now func() time.Time
}

// Option configures an Engine.
type Option[V any] func(*Engine[V])

// WithClock replaces time.Now, mainly for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(e *Engine[V]) {
		if now != nil {
			e.now = now
		}
	}
}

// WithStore replaces the default copy-on-write store.
func WithStore[V any](s store.Store[V]) Option[V] {
	return func(e *Engine[V]) {
		if s != nil {
			e.store = s
		}
	}
}

// NewEngine creates an Engine. A nil strategy keeps entries forever; nil metrics are ignored.
func NewEngine[V any](exp expiration.Strategy, metrics types.Metrics, opts ...Option[V]) *Engine[V] {
	if exp == nil {
		exp = expiration.Never{}
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	e := &Engine[V]{
		Expiration: exp,
		Metrics:    metrics,
		store:      store.NewCOW[V](),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

/*
Lookup returns the stored value for key if it is present and not expired.

A stale entry is reported as a miss but left in place; the next successful
load overwrites it.
*/
func (e *Engine[V]) Lookup(key string) (V, bool) {
	v, ok, stale := e.peek(key)
	switch {
	case ok:
		e.Metrics.Hit()
	case stale:
		e.Metrics.Expire()
		e.Metrics.Miss()
	default:
		e.Metrics.Miss()
	}
	return v, ok
}

/*
Load runs fn for key and stores the result.

If 100 goroutines miss the same key at once, fn runs ONCE and every caller
receives its result. fn gets the first caller's ctx values but not its
cancellation, so fn must bound itself with its own timeout. A caller whose ctx
ends stops waiting and gets ctx.Err(); the load keeps running for the others.
A failed load stores nothing, so the next call tries the provider again.
*/
func (e *Engine[V]) Load(ctx context.Context, key string, fn types.LoadFunc[V]) (V, error) {
	detached := context.WithoutCancel(ctx)
	ch := e.sf.DoChan(key, func() (any, error) {
		// A flight that finished just before this one may already have filled the key.
		if v, ok, _ := e.peek(key); ok {
			return v, nil
		}

		v, err := fn(detached, key)
		if err != nil {
			return v, err
		}
		e.Store(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		v, _ := res.Val.(V)
		return v, res.Err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Store writes v for key, stamped with the current time, replacing any previous entry.
func (e *Engine[V]) Store(key string, v V) {
	e.store.Put(key, types.TimedEntry[V]{Value: v, WrittenAt: e.now()})
}

// Forget removes key.
func (e *Engine[V]) Forget(key string) {
	e.store.Delete(key)
}

// Clear removes every entry.
func (e *Engine[V]) Clear() {
	e.store.Clear()
}

// Len returns how many entries are stored, stale ones included.
func (e *Engine[V]) Len() int {
	return e.store.Len()
}

// Keys returns the stored keys in ascending order, stale ones included.
func (e *Engine[V]) Keys() []string {
	return e.store.Keys()
}

// PurgeExpired removes every stale entry and returns how many were removed.
func (e *Engine[V]) PurgeExpired() int {
	now := e.now()
	return e.store.DeleteFunc(func(_ string, ent types.TimedEntry[V]) bool {
		return e.Expiration.IsExpired(ent.WrittenAt, now)
	})
}

// peek reads key without touching metrics.
func (e *Engine[V]) peek(key string) (v V, ok bool, stale bool) {
	ent, found := e.store.Get(key)
	if !found {
		return v, false, false
	}
	if e.Expiration.IsExpired(ent.WrittenAt, e.now()) {
		return v, false, true
	}
	return ent.Value, true, false
}
