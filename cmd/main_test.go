package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/wardrobe-cache/config"
	"github.com/krisalay/wardrobe-cache/weather"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	t.Setenv(config.EnvWeatherAPIKey, "")
	t.Setenv(config.EnvVisionToken, "")
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestWeatherCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		_, _ = w.Write([]byte(`{"name":"Taipei","main":{"temp":28.46,"feels_like":31.04,"humidity":74},
			"weather":[{"main":"Clouds","description":"broken clouds","icon":"04d"}]}`))
	}))
	defer srv.Close()

	path := writeConfig(t, fmt.Sprintf("weather:\n  base_url: %s\n  api_key: k\n", srv.URL))

	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(),
		[]string{"wardrobe-cache", "--config", path, "weather", "--lat", "25.033", "--lon", "121.5654"})
	require.NoError(t, err)

	var rec weather.Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "臺北市", rec.Place)
	assert.Equal(t, 28.5, rec.Temperature)
	assert.Equal(t, "Clouds", rec.Condition)
}

func TestWeatherCommand_EveryKeepsReportingFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"name":"Taipei","main":{"temp":28.46,"feels_like":31.04,"humidity":74},
			"weather":[{"main":"Clouds","description":"broken clouds","icon":"04d"}]}`))
	}))
	defer srv.Close()

	path := writeConfig(t, fmt.Sprintf("weather:\n  base_url: %s\n  api_key: k\n  sweep_interval: 5ms\n", srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := newApp(&out).Run(ctx,
		[]string{"wardrobe-cache", "--config", path, "weather", "--lat", "25.033", "--lon", "121.5654", "--every", "10ms"})
	require.NoError(t, err)

	dec := json.NewDecoder(&out)
	reports := 0
	for dec.More() {
		var rec weather.Record
		require.NoError(t, dec.Decode(&rec))
		assert.Equal(t, "臺北市", rec.Place)
		reports++
	}
	assert.GreaterOrEqual(t, reports, 2)
	assert.Equal(t, int32(1), hits.Load(), "later reports are served from the cache")
}

func TestWeatherCommand_FallbackWithoutAPIKey(t *testing.T) {
	path := writeConfig(t, "weather:\n  base_url: http://127.0.0.1:1\n")

	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(),
		[]string{"wardrobe-cache", "--config", path, "weather", "--lat", "1", "--lon", "2"})
	require.NoError(t, err)

	var rec weather.Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, weather.DefaultFallback, rec)
}

func TestFeaturesCommand_ReportsExtractionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	path := writeConfig(t, fmt.Sprintf("features:\n  endpoint: %s\n  retries: 2\n", srv.URL))

	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(),
		[]string{"wardrobe-cache", "--config", path, "features", "--image", "https://img.example/a.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 attempts")
	assert.Empty(t, out.String())
}

func TestCommands_RejectInvalidConfig(t *testing.T) {
	path := writeConfig(t, "lru:\n  capacity: 0\n")

	err := newApp(&bytes.Buffer{}).Run(context.Background(),
		[]string{"wardrobe-cache", "--config", path, "weather", "--lat", "1", "--lon", "2"})
	require.Error(t, err)
}

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runDemo(context.Background(), &out))

	got := out.String()
	assert.Contains(t, got, "evicted b=beta")
	assert.Contains(t, got, "keys, most recent first: [d a c]")
	assert.Contains(t, got, "臺北市 27.5°C broken clouds (provider calls: 1)")
	assert.Contains(t, got, "nearby point shares 25.0:121.6 (provider calls: 1)")
	assert.Contains(t, got, "(provider calls: 2)")
	assert.Contains(t, got, "fallback Unknown 22.0°C")
	assert.Contains(t, got, "hue=blue pattern=striped style=\"smart casual\" material=denim")
	assert.Contains(t, got, "extraction failed: true")
	assert.Contains(t, got, "cached images: 1")
	assert.Contains(t, got, "RETRIES   : 4")
}
