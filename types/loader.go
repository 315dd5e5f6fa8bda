package types

import "context"

/*
LoadFunc is the contract between a cache and the slow provider behind it.

It is called when the cache misses:
 1. Cache checks memory → key not found (or stale)
 2. Cache calls the LoadFunc for that key
 3. LoadFunc talks to the provider (weather API, vision model, ...)
 4. Cache stores the result in memory
 5. Cache returns the value

A LoadFunc that returns an error must not have its result stored.
*/
type LoadFunc[V any] func(ctx context.Context, key string) (V, error)
