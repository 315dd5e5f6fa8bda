package features

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/krisalay/wardrobe-cache/engine"
	"github.com/krisalay/wardrobe-cache/expiration"
	"github.com/krisalay/wardrobe-cache/store"
	"github.com/krisalay/wardrobe-cache/types"
)

const (
	// DefaultRetries is how many times the provider is tried before giving up.
	DefaultRetries = 3

	// DefaultAttemptTimeout bounds each provider call.
	DefaultAttemptTimeout = 30 * time.Second
)

/*
Cache derives a Record from an image reference through an Extractor and keeps it
for the lifetime of the process.

A miss tries the provider up to the configured number of times with the same input.
Only when every attempt has failed does the caller see an error, and then nothing
is cached. Concurrent misses for the same image share one run of attempts.
*/
type Cache struct {
	extractor      Extractor
	engine         *engine.Engine[Record]
	retries        int
	backoff        time.Duration
	attemptTimeout time.Duration
	metrics        types.Metrics
	logger         log.Interface
}

type settings struct {
	retries        int
	backoff        time.Duration
	attemptTimeout time.Duration
	metrics        types.Metrics
	logger         log.Interface
}

// Option configures a Cache.
type Option func(*settings)

// WithRetries sets the number of attempts per miss. It must be at least 1.
func WithRetries(n int) Option {
	return func(s *settings) { s.retries = n }
}

// WithBackoff waits base, 2*base, 4*base, ... between attempts.
// The default of zero retries immediately.
func WithBackoff(base time.Duration) Option {
	return func(s *settings) { s.backoff = base }
}

// WithAttemptTimeout bounds each provider call. Zero removes the bound, leaving a hung
// provider call to run until it returns on its own.
func WithAttemptTimeout(d time.Duration) Option {
	return func(s *settings) { s.attemptTimeout = d }
}

func WithMetrics(m types.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

func WithLogger(l log.Interface) Option {
	return func(s *settings) { s.logger = l }
}

// NewCache wraps extractor with a retrying, never-expiring cache.
func NewCache(extractor Extractor, opts ...Option) (*Cache, error) {
	s := settings{
		retries:        DefaultRetries,
		attemptTimeout: DefaultAttemptTimeout,
		metrics:        types.NoopMetrics{},
		logger:         log.Log,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.retries < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRetries, s.retries)
	}

	// Records never expire, so the store only grows; it must keep writes O(1).
	eng := engine.NewEngine[Record](
		expiration.Never{},
		s.metrics,
		engine.WithStore[Record](store.NewLocked[Record]()),
	)

	return &Cache{
		extractor:      extractor,
		engine:         eng,
		retries:        s.retries,
		backoff:        s.backoff,
		attemptTimeout: s.attemptTimeout,
		metrics:        s.metrics,
		logger:         s.logger,
	}, nil
}

/*
ExtractKeywords returns the Record for imageRef.

 1. A cached record is returned without calling the provider.
 2. Otherwise the provider is attempted up to the retry count.
 3. The first successful answer set is normalized, cached and returned.
 4. If every attempt fails the error wraps ErrExtractionFailed and nothing is cached.
*/
func (c *Cache) ExtractKeywords(ctx context.Context, imageRef string) (Record, error) {
	if rec, ok := c.engine.Lookup(imageRef); ok {
		return rec, nil
	}
	rec, err := c.engine.Load(ctx, imageRef, c.extractWithRetry)
	if err != nil && !errors.Is(err, ErrExtractionFailed) {
		// The caller gave up waiting; the attempts carry on for other callers.
		return rec, fmt.Errorf("%w: stopped waiting for %s: %w", ErrExtractionFailed, shortRef(imageRef), err)
	}
	return rec, err
}

func (c *Cache) extractWithRetry(ctx context.Context, imageRef string) (Record, error) {
	var lastErr error
	attempts := 0

	for attempts < c.retries {
		if attempts > 0 {
			if err := c.wait(ctx, attempts); err != nil {
				lastErr = err
				break
			}
			c.metrics.Retry()
		}

		attempts++
		answers, err := c.attempt(ctx, imageRef)
		if err == nil {
			return Normalize(answers), nil
		}

		lastErr = err
		c.logger.WithFields(log.Fields{
			"image_ref": shortRef(imageRef),
			"attempt":   attempts,
			"retries":   c.retries,
		}).WithError(err).Warn("feature extraction attempt failed")
	}

	return Record{}, fmt.Errorf("%w: %d of %d attempts for %s: %w",
		ErrExtractionFailed, attempts, c.retries, shortRef(imageRef), lastErr)
}

func (c *Cache) attempt(ctx context.Context, imageRef string) (Answers, error) {
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}
	return c.extractor.Extract(ctx, imageRef)
}

// wait sleeps before attempt n+1 and gives up early when ctx is done.
func (c *Cache) wait(ctx context.Context, n int) error {
	if c.backoff <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.backoff << (n - 1))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns how many image references have a cached record.
func (c *Cache) Len() int {
	return c.engine.Len()
}

// Forget drops the cached record for imageRef so the next call asks the provider again.
func (c *Cache) Forget(imageRef string) {
	c.engine.Forget(imageRef)
}

// Clear drops every cached record.
func (c *Cache) Clear() {
	c.engine.Clear()
}

// shortRef keeps log lines readable when image references are inline data URLs.
func shortRef(ref string) string {
	const limit = 64
	if len(ref) <= limit {
		return ref
	}
	return ref[:limit] + "..."
}
