package api

import (
	"context"

	cache "github.com/krisalay/wardrobe-cache"
	"github.com/krisalay/wardrobe-cache/features"
	"github.com/krisalay/wardrobe-cache/weather"
)

/*
This package defines the PUBLIC surface route handlers depend on.
Handlers receive these interfaces at construction time, so tests can pass fakes
and each process decides how many cache instances it wants.
*/

/*
Cache is a bounded key → value store.

BEHAVIOR:
---------
- Get on a present key returns it and marks it most recently used
- Get on an absent key reports ok=false; that is not an error
- Put on a full cache evicts the least recently used key first
*/
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Remove(key K)
	Len() int
}

/*
WeatherService serves weather for coordinates.

GetWeather never fails: when the provider is unavailable a default record is returned.
*/
type WeatherService interface {
	GetWeather(ctx context.Context, lat, lon float64) weather.Record
	ClearAll()
	Stats() weather.Stats
}

/*
FeatureService derives garment attributes from an image reference.

ExtractKeywords returns an error wrapping features.ErrExtractionFailed once
every attempt has failed; callers must handle it.
*/
type FeatureService interface {
	ExtractKeywords(ctx context.Context, imageRef string) (features.Record, error)
}

var (
	_ Cache[string, int] = (*cache.BoundedCache[string, int])(nil)
	_ Cache[string, int] = (*cache.ShardedCache[int])(nil)
	_ WeatherService     = (*weather.Cache)(nil)
	_ FeatureService     = (*features.Cache)(nil)
)
