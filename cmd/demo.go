package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/urfave/cli/v3"

	cache "github.com/krisalay/wardrobe-cache"
	"github.com/krisalay/wardrobe-cache/features"
	"github.com/krisalay/wardrobe-cache/types"
	"github.com/krisalay/wardrobe-cache/weather"
)

func demoCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "walk through cache behavior against in-process providers",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDemo(ctx, out)
		},
	}
}

// ================= PROVIDERS =================

type demoClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *demoClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *demoClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// demoFetcher counts calls and fails while down is set.
type demoFetcher struct {
	calls atomic.Int64
	down  atomic.Bool
}

func (f *demoFetcher) Fetch(ctx context.Context, lat, lon float64) (weather.Observation, error) {
	f.calls.Add(1)
	time.Sleep(10 * time.Millisecond)
	if f.down.Load() {
		return weather.Observation{}, platformerrors.New(platformerrors.CodeUnavailable, "provider returned 503")
	}
	return weather.Observation{
		PlaceName:   "Taipei",
		Temperature: 27.46,
		FeelsLike:   29.04,
		Humidity:    74,
		Condition:   "Clouds",
		Description: "broken clouds",
		Icon:        "04d",
	}, nil
}

// demoExtractor fails the first failures calls for every image.
type demoExtractor struct {
	mu       sync.Mutex
	failures int
	seen     map[string]int
}

func (e *demoExtractor) Extract(ctx context.Context, imageRef string) (features.Answers, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen[imageRef]++
	if e.seen[imageRef] <= e.failures {
		return nil, platformerrors.New(platformerrors.CodeRateLimit, "model is loading")
	}
	return features.Answers{
		features.Hue:      "Blue",
		features.Pattern:  "striped",
		features.Style:    "smart casual",
		features.Material: " Denim ",
		features.Occasion: "everyday",
	}, nil
}

// ================= DEMO =================

func runDemo(ctx context.Context, out io.Writer) error {
	fmt.Fprintln(out, "\n==================== SYSTEM BOOT ====================")
	fmt.Fprintln(out, "LRU CAPACITY    : 3 keys")
	fmt.Fprintln(out, "WEATHER TTL     :", weather.DefaultTTL)
	fmt.Fprintln(out, "WEATHER TIMEOUT :", weather.DefaultFetchTimeout)
	fmt.Fprintln(out, "FEATURE RETRIES :", features.DefaultRetries)

	metrics := &types.Counters{}

	// ====================================================
	fmt.Fprintln(out, "\n==================== 1) LRU EVICTION ====================")
	lru, err := cache.New[string, string](3,
		cache.WithMetrics[string, string](metrics),
		cache.WithOnEvict(func(k, v string) { fmt.Fprintf(out, "CACHE  → evicted %s=%s\n", k, v) }),
	)
	if err != nil {
		return err
	}
	lru.Put("a", "alpha")
	lru.Put("b", "beta")
	lru.Put("c", "gamma")
	lru.Get("a")
	lru.Put("d", "delta")
	fmt.Fprintln(out, "CACHE  → keys, most recent first:", lru.Keys())

	// ====================================================
	fmt.Fprintln(out, "\n==================== 2) WEATHER MISS THEN HIT ====================")
	clock := &demoClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	fetcher := &demoFetcher{}
	wc := weather.NewCache(fetcher, weather.WithMetrics(metrics), weather.WithClock(clock.Now))

	rec := wc.GetWeather(ctx, 25.0330, 121.5654)
	fmt.Fprintf(out, "WEATHER → %s %.1f°C %s (provider calls: %d)\n", rec.Place, rec.Temperature, rec.Description, fetcher.calls.Load())
	wc.GetWeather(ctx, 25.0301, 121.5601)
	fmt.Fprintf(out, "WEATHER → nearby point shares %s (provider calls: %d)\n", weather.GeoKey(25.0301, 121.5601), fetcher.calls.Load())

	// ====================================================
	fmt.Fprintln(out, "\n==================== 3) TTL EXPIRATION ====================")
	clock.Advance(weather.DefaultTTL)
	wc.GetWeather(ctx, 25.0330, 121.5654)
	fmt.Fprintf(out, "WEATHER → refetched after %s (provider calls: %d)\n", weather.DefaultTTL, fetcher.calls.Load())

	// ====================================================
	fmt.Fprintln(out, "\n==================== 4) FALLBACK ====================")
	fetcher.down.Store(true)
	rec = wc.GetWeather(ctx, 35.6762, 139.6503)
	fmt.Fprintf(out, "WEATHER → provider down, fallback %s %.1f°C\n", rec.Place, rec.Temperature)
	fmt.Fprintf(out, "WEATHER → cached cells: %v\n", wc.Stats().Keys)
	fetcher.down.Store(false)

	// ====================================================
	fmt.Fprintln(out, "\n==================== 5) SINGLEFLIGHT ====================")
	before := fetcher.calls.Load()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wc.GetWeather(ctx, 22.6273, 120.3014)
		}()
	}
	wg.Wait()
	fmt.Fprintf(out, "WEATHER → 5 concurrent misses, %d provider call(s)\n", fetcher.calls.Load()-before)

	// ====================================================
	fmt.Fprintln(out, "\n==================== 6) FEATURE RETRIES ====================")
	extractor := &demoExtractor{failures: 2, seen: map[string]int{}}
	fc, err := features.NewCache(extractor, features.WithMetrics(metrics))
	if err != nil {
		return err
	}
	fr, err := fc.ExtractKeywords(ctx, "https://img.example/shirt.jpg")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "FEATURES → hue=%s pattern=%s style=%q material=%s\n", fr.Hue, fr.Pattern, fr.Style, fr.Material)

	// ====================================================
	fmt.Fprintln(out, "\n==================== 7) EXTRACTION FAILED ====================")
	extractor.mu.Lock()
	extractor.failures = features.DefaultRetries
	extractor.mu.Unlock()
	_, err = fc.ExtractKeywords(ctx, "https://img.example/jacket.jpg")
	fmt.Fprintln(out, "FEATURES → extraction failed:", errors.Is(err, features.ErrExtractionFailed))
	fmt.Fprintln(out, "FEATURES → cached images:", fc.Len())

	// ====================================================
	printMetrics(out, metrics.Snapshot())
	return nil
}

func printMetrics(out io.Writer, s types.Snapshot) {
	fmt.Fprintln(out, "\n==================== METRICS ====================")
	fmt.Fprintf(out, "HITS      : %s\n", humanize.Comma(s.Hits))
	fmt.Fprintf(out, "MISSES    : %s\n", humanize.Comma(s.Misses))
	fmt.Fprintf(out, "EVICTIONS : %s\n", humanize.Comma(s.Evictions))
	fmt.Fprintf(out, "EXPIRED   : %s\n", humanize.Comma(s.Expired))
	fmt.Fprintf(out, "FALLBACKS : %s\n", humanize.Comma(s.Fallbacks))
	fmt.Fprintf(out, "RETRIES   : %s\n", humanize.Comma(s.Retries))
}
