package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries every tunable of the service. Defaults match the
// production endpoints so a bare `go run` works; tests construct the
// struct directly.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	// 7-ELEVEN LoveFood (OpenPoint) API.
	SevenBaseURL string `env:"SEVEN_BASE_URL" envDefault:"https://lovefood.openpoint.com.tw/LoveFood/api/"`
	SevenMidV    string `env:"SEVEN_MID_V" envDefault:"W0_DiF4DlgU5OeQoRswrRcaaNHMWOL7K3ra3385ocZcv-bBOWySZvoUtH6j-7pjiccl0C5h30uRUNbJXsABCKMqiekSb7tdiBNdVq8Ro5jgk6sgvhZla5iV0H3-8dZfASc7AhEm85679LIK3hxN7Sam6D0LAnYK9Lb0DZhn7xeTeksB4IsBx4Msr_VI"`

	// FamilyMart map API plus the static store directory.
	FamiMapBaseURL    string `env:"FAMI_MAP_BASE_URL" envDefault:"https://stamp.family.com.tw/api/maps"`
	FamiStoreQueryURL string `env:"FAMI_STORE_QUERY_URL" envDefault:"https://family.map.com.tw/famiport/api/dropdownlist/Select_StoreName"`
	FamiDirectoryURL  string `env:"FAMI_DIRECTORY_URL" envDefault:"https://alan-cheng.github.io/Friendly-Cat/assets/family_mart_stores.json"`

	SearchRadiusMeters int           `env:"SEARCH_RADIUS_METERS" envDefault:"1000"`
	ProviderTimeout    time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"8s"`
	ComputeTimeout     time.Duration `env:"COMPUTE_TIMEOUT" envDefault:"12s"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Per-search category enrichment: at most EnrichLimit stores, each
	// request staggered to stay under upstream rate limits.
	EnrichLimit   int           `env:"ENRICH_LIMIT" envDefault:"5"`
	EnrichStagger time.Duration `env:"ENRICH_STAGGER" envDefault:"200ms"`

	// Fallback center when a request carries no coordinates
	// (Taipei 101 block).
	DefaultLat float64 `env:"DEFAULT_LAT" envDefault:"25.0375197"`
	DefaultLng float64 `env:"DEFAULT_LNG" envDefault:"121.5636704"`
}

func Load(path ...string) (*Config, error) {
	const op = "config.Load"

	if os.Getenv("APP_ENV") == "local" {
		if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: load .env: %w", op, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}
