package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	cache "github.com/krisalay/wardrobe-cache"
	"github.com/krisalay/wardrobe-cache/config"
	"github.com/krisalay/wardrobe-cache/types"
)

// load describes one benchmark run against the cache sized by the lru config section.
type load struct {
	LRU        config.LRU
	Goroutines int
	OpsPerG    int
}

type result struct {
	Ops      int
	Duration time.Duration
	Entries  int
	Metrics  types.Snapshot
}

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "load test the sharded LRU sized by lru.capacity and lru.shards",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to " + config.FileName},
			&cli.IntFlag{Name: "goroutines", Value: 200, Usage: "concurrent workers"},
			&cli.IntFlag{Name: "ops", Value: 5000, Usage: "operations per worker"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			_, err = run(os.Stdout, load{
				LRU:        cfg.LRU,
				Goroutines: int(cmd.Int("goroutines")),
				OpsPerG:    int(cmd.Int("ops")),
			})
			return err
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ================= BENCHMARK =================

func run(out io.Writer, l load) (result, error) {
	// Keys beyond the capacity force evictions; the preload fills half of it.
	preloadKeys := l.LRU.Capacity / 2
	keySpace := l.LRU.Capacity + l.LRU.Capacity/4

	fmt.Fprintln(out, "\n================ CACHE LOAD BENCHMARK =================")
	fmt.Fprintln(out, "CONFIG")
	fmt.Fprintln(out, "---------------------------------")
	fmt.Fprintln(out, "Shards       :", l.LRU.Shards)
	fmt.Fprintln(out, "Capacity     :", humanize.Comma(int64(l.LRU.Capacity)))
	fmt.Fprintln(out, "Preload Keys :", humanize.Comma(int64(preloadKeys)))
	fmt.Fprintln(out, "Key Space    :", humanize.Comma(int64(keySpace)))
	fmt.Fprintln(out, "Goroutines   :", l.Goroutines)
	fmt.Fprintln(out, "Ops/Goroutine:", humanize.Comma(int64(l.OpsPerG)))
	fmt.Fprintln(out, "---------------------------------")

	metrics := &types.Counters{}
	c, err := cache.NewShardedCache[int](l.LRU.Shards, l.LRU.Capacity, metrics)
	if err != nil {
		return result{}, err
	}

	// ---------------- Preload Cache ----------------
	fmt.Fprintln(out, "Preloading cache...")
	for i := 0; i < preloadKeys; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
	}
	fmt.Fprintln(out, "Preload complete.")

	// ---------------- Load Test ----------------
	// Every 10th operation writes.
	fmt.Fprintln(out, "Running concurrency benchmark...")

	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(l.Goroutines)

	for i := 0; i < l.Goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < l.OpsPerG; j++ {
				n := (id*l.OpsPerG + j) % keySpace
				key := fmt.Sprintf("key-%d", n)
				if j%10 == 0 {
					c.Put(key, n)
					continue
				}
				c.Get(key)
			}
		}(i)
	}

	wg.Wait()

	res := result{
		Ops:      l.Goroutines * l.OpsPerG,
		Duration: time.Since(start),
		Entries:  c.Len(),
		Metrics:  metrics.Snapshot(),
	}

	fmt.Fprintln(out, "\n================ RESULTS =================")
	fmt.Fprintf(out, "Total Operations : %s\n", humanize.Comma(int64(res.Ops)))
	fmt.Fprintf(out, "Total Time       : %v\n", res.Duration)
	fmt.Fprintf(out, "Throughput       : %s ops/sec\n", humanize.CommafWithDigits(float64(res.Ops)/res.Duration.Seconds(), 2))
	fmt.Fprintf(out, "Hits / Misses    : %s / %s\n", humanize.Comma(res.Metrics.Hits), humanize.Comma(res.Metrics.Misses))
	fmt.Fprintf(out, "Evictions        : %s\n", humanize.Comma(res.Metrics.Evictions))
	fmt.Fprintf(out, "Entries          : %s\n", humanize.Comma(int64(res.Entries)))
	fmt.Fprintln(out, "=========================================")

	return res, nil
}
