package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/krisalay/wardrobe-cache/config"
	"github.com/krisalay/wardrobe-cache/features"
	"github.com/krisalay/wardrobe-cache/sweep"
	"github.com/krisalay/wardrobe-cache/types"
	"github.com/krisalay/wardrobe-cache/weather"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to " + config.FileName + " (default: search the user config dirs)",
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "wardrobe-cache",
		Usage:  "caches in front of the weather and garment feature providers",
		Writer: out,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			weatherCommand(out),
			featuresCommand(out),
			demoCommand(out),
		},
	}
}

func weatherCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "weather",
		Usage:     "look up the current weather at a coordinate",
		UsageText: "wardrobe-cache weather --lat 25.03 --lon 121.56 [--every 10m]",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "lat", Usage: "latitude in degrees", Required: true},
			&cli.FloatFlag{Name: "lon", Usage: "longitude in degrees", Required: true},
			&cli.DurationFlag{Name: "every", Usage: "keep reporting at this interval until interrupted"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			metrics := &types.Counters{}
			wc := newWeatherCache(cfg, metrics)
			lat, lon := cmd.Float("lat"), cmd.Float("lon")

			every := cmd.Duration("every")
			if every <= 0 {
				return reportWeather(ctx, out, wc, metrics, lat, lon)
			}

			if cfg.Weather.SweepInterval > 0 {
				j := sweep.Start(wc, cfg.Weather.SweepInterval, log.Log)
				defer j.Close()
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				if err := reportWeather(ctx, out, wc, metrics, lat, lon); err != nil {
					return err
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}

func reportWeather(ctx context.Context, out io.Writer, wc *weather.Cache, metrics *types.Counters, lat, lon float64) error {
	before := metrics.Snapshot().Fallbacks
	record := wc.GetWeather(ctx, lat, lon)
	if metrics.Snapshot().Fallbacks > before {
		fmt.Fprintln(os.Stderr, "provider unavailable, serving fallback weather")
	}
	return writeJSON(out, record)
}

func featuresCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "features",
		Usage:     "extract garment attributes from an image",
		UsageText: "wardrobe-cache features --image https://example.com/shirt.jpg",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Usage: "image URL or data URI", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			fc, err := newFeatureCache(cfg, &types.Counters{})
			if err != nil {
				return err
			}

			record, err := fc.ExtractKeywords(ctx, cmd.String("image"))
			if err != nil {
				return err
			}
			return writeJSON(out, record)
		},
	}
}

func newWeatherCache(cfg config.Config, metrics types.Metrics) *weather.Cache {
	return weather.NewCache(
		weather.NewOpenWeatherFetcher(cfg.Weather.BaseURL, cfg.Weather.APIKey),
		weather.WithTTL(cfg.Weather.TTL),
		weather.WithFetchTimeout(cfg.Weather.FetchTimeout),
		weather.WithPlaceNames(weather.DefaultPlaceNames.Merge(cfg.Weather.PlaceNames)),
		weather.WithMetrics(metrics),
	)
}

func newFeatureCache(cfg config.Config, metrics types.Metrics) (*features.Cache, error) {
	return features.NewCache(
		features.NewVQAExtractor(cfg.Features.Endpoint, cfg.Features.Token),
		features.WithRetries(cfg.Features.Retries),
		features.WithBackoff(cfg.Features.Backoff),
		features.WithAttemptTimeout(cfg.Features.AttemptTimeout),
		features.WithMetrics(metrics),
	)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
