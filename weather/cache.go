package weather

import (
	"context"
	"time"

	"github.com/apex/log"

	"github.com/krisalay/wardrobe-cache/engine"
	"github.com/krisalay/wardrobe-cache/expiration"
	"github.com/krisalay/wardrobe-cache/types"
)

const (
	// DefaultTTL is how long a fetched record is served before the provider is asked again.
	DefaultTTL = 3 * time.Hour

	// DefaultFetchTimeout bounds a single provider call.
	DefaultFetchTimeout = 10 * time.Second
)

/*
Cache serves weather for coordinates while keeping provider calls to a minimum.

Coordinates are bucketed into GeoKey grid cells; a cell's record is reused until
it is TTL old. Provider failures never reach the caller: a fixed fallback record
is returned instead and NOT stored, so the next request retries the provider.

Concurrent misses for one cell share a single provider call.
*/
type Cache struct {
	fetcher  Fetcher
	engine   *engine.Engine[Record]
	timeout  time.Duration
	fallback Record
	places   PlaceNames
	metrics  types.Metrics
	logger   log.Interface
}

type settings struct {
	ttl      time.Duration
	timeout  time.Duration
	fallback Record
	places   PlaceNames
	metrics  types.Metrics
	logger   log.Interface
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*settings)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithFallback overrides DefaultFallback.
func WithFallback(r Record) Option {
	return func(s *settings) { s.fallback = r }
}

// WithPlaceNames replaces the place-name table.
func WithPlaceNames(p PlaceNames) Option {
	return func(s *settings) { s.places = p }
}

func WithMetrics(m types.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

func WithLogger(l log.Interface) Option {
	return func(s *settings) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// NewCache wraps fetcher with a geo-bucketed, TTL-checked cache.
func NewCache(fetcher Fetcher, opts ...Option) *Cache {
	s := settings{
		ttl:      DefaultTTL,
		timeout:  DefaultFetchTimeout,
		fallback: DefaultFallback,
		places:   DefaultPlaceNames,
		metrics:  types.NoopMetrics{},
		logger:   log.Log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Cache{
		fetcher: fetcher,
		engine: engine.NewEngine[Record](
			expiration.ExpireAfterWrite{TTL: s.ttl},
			s.metrics,
			engine.WithClock[Record](s.now),
		),
		timeout:  s.timeout,
		fallback: s.fallback,
		places:   s.places,
		metrics:  s.metrics,
		logger:   s.logger,
	}
}

/*
GetWeather returns the weather for the grid cell containing (lat, lon). It never fails.

 1. A fresh record for the cell is returned without calling the provider.
 2. Otherwise the provider is called with the original coordinates, bounded by the fetch timeout.
 3. On success the record is stored for the cell and returned.
 4. On failure the fallback record is returned and nothing is stored.
*/
func (c *Cache) GetWeather(ctx context.Context, lat, lon float64) Record {
	key := GeoKey(lat, lon)

	if rec, ok := c.engine.Lookup(key); ok {
		return rec
	}

	rec, err := c.engine.Load(ctx, key, func(ctx context.Context, _ string) (Record, error) {
		return c.fetch(ctx, lat, lon)
	})
	if err != nil {
		c.metrics.Fallback()
		entry := c.logger.WithFields(log.Fields{"key": key, "lat": lat, "lon": lon}).WithError(err)
		if isConfigError(err) {
			entry.Error("weather provider is misconfigured, serving fallback")
		} else {
			entry.Warn("weather provider unavailable, serving fallback")
		}
		return c.fallback
	}
	return rec
}

func (c *Cache) fetch(ctx context.Context, lat, lon float64) (Record, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	obs, err := c.fetcher.Fetch(ctx, lat, lon)
	if err != nil {
		return Record{}, err
	}
	return c.toRecord(obs), nil
}

func (c *Cache) toRecord(obs Observation) Record {
	return Record{
		Temperature: round1(obs.Temperature),
		FeelsLike:   round1(obs.FeelsLike),
		Humidity:    obs.Humidity,
		Condition:   obs.Condition,
		Description: obs.Description,
		Icon:        obs.Icon,
		Place:       c.places.Localize(obs.PlaceName),
	}
}

// ClearAll removes every stored record.
func (c *Cache) ClearAll() {
	c.engine.Clear()
}

// Stats describes the cache contents. It is for observability only.
type Stats struct {
	Entries int      `json:"entries"`
	Keys    []string `json:"keys"`
}

// Stats reports how many cells are stored (stale ones included) and their keys in ascending order.
func (c *Cache) Stats() Stats {
	keys := c.engine.Keys()
	return Stats{Entries: len(keys), Keys: keys}
}

// PurgeExpired drops records older than the TTL and returns how many were dropped.
func (c *Cache) PurgeExpired() int {
	return c.engine.PurgeExpired()
}
