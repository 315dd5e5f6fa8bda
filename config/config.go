package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	platformerrors "github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is looked up in the standard config directories when no path is given.
	FileName = "wardrobe-cache.yaml"

	EnvWeatherAPIKey = "WARDROBE_WEATHER_API_KEY"
	EnvVisionToken   = "WARDROBE_VISION_TOKEN"
)

// Config holds every tunable of the caching layer.
type Config struct {
	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`

	LRU      LRU      `yaml:"lru"`
	Weather  Weather  `yaml:"weather"`
	Features Features `yaml:"features"`
}

type LRU struct {
	Capacity int `yaml:"capacity"`
	Shards   int `yaml:"shards"`
}

type Weather struct {
	TTL          time.Duration `yaml:"ttl"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	// SweepInterval > 0 purges stale records in the background; zero keeps them until overwritten.
	SweepInterval time.Duration     `yaml:"sweep_interval"`
	PlaceNames    map[string]string `yaml:"place_names"`
}

type Features struct {
	Retries        int           `yaml:"retries"`
	Backoff        time.Duration `yaml:"backoff"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	Endpoint       string        `yaml:"endpoint"`
	Token          string        `yaml:"token"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LRU: LRU{
			Capacity: 1000,
			Shards:   1,
		},
		Weather: Weather{
			TTL:          3 * time.Hour,
			FetchTimeout: 10 * time.Second,
			BaseURL:      "https://api.openweathermap.org",
		},
		Features: Features{
			Retries:        3,
			AttemptTimeout: 30 * time.Second,
		},
	}
}

/*
Load reads the YAML file at path on top of Default, applies environment
overrides for credentials and validates the result.

An empty path searches $XDG_CONFIG_HOME, $APPDATA and $HOME for FileName and
falls back to defaults when none exists.
*/
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "failed to parse config file %s", path)
		}
		cfg.Source = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvWeatherAPIKey); ok && v != "" {
		c.Weather.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvVisionToken); ok && v != "" {
		c.Features.Token = v
	}
}

// Validate rejects settings that would silently disable caching or retries.
func (c Config) Validate() error {
	switch {
	case c.LRU.Capacity <= 0:
		return platformerrors.Newf(platformerrors.CodeInvalidConfig, "lru.capacity must be positive, got %d", c.LRU.Capacity)
	case c.LRU.Shards <= 0:
		return platformerrors.Newf(platformerrors.CodeInvalidConfig, "lru.shards must be positive, got %d", c.LRU.Shards)
	case c.LRU.Capacity < c.LRU.Shards:
		return platformerrors.Newf(platformerrors.CodeInvalidConfig, "lru.capacity %d is below lru.shards %d", c.LRU.Capacity, c.LRU.Shards)
	case c.Weather.TTL <= 0:
		return platformerrors.Newf(platformerrors.CodeInvalidConfig, "weather.ttl must be positive, got %s", c.Weather.TTL)
	case c.Weather.FetchTimeout < 0, c.Weather.SweepInterval < 0:
		return platformerrors.New(platformerrors.CodeInvalidConfig, "weather durations must not be negative")
	case c.Features.Retries < 1:
		return platformerrors.Newf(platformerrors.CodeInvalidConfig, "features.retries must be at least 1, got %d", c.Features.Retries)
	case c.Features.Backoff < 0, c.Features.AttemptTimeout < 0:
		return platformerrors.New(platformerrors.CodeInvalidConfig, "features durations must not be negative")
	}
	return nil
}

func findConfigFile() string {
	candidates := []string{
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		file := filepath.Join(c, FileName)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			log.Debugf("using config file: %s", file)
			return file
		}
	}
	return ""
}
