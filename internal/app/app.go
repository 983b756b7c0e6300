package app

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Jeffrey0117/isnowfriend/internal/config"
	handlers "github.com/Jeffrey0117/isnowfriend/internal/http"
	"github.com/Jeffrey0117/isnowfriend/internal/location"
	"github.com/Jeffrey0117/isnowfriend/internal/models"
	"github.com/Jeffrey0117/isnowfriend/internal/obs"
	"github.com/Jeffrey0117/isnowfriend/internal/providers/famimart"
	"github.com/Jeffrey0117/isnowfriend/internal/providers/seveneleven"
	"github.com/Jeffrey0117/isnowfriend/internal/routes"
	"github.com/Jeffrey0117/isnowfriend/internal/search"
)

type App struct {
	Router      http.Handler
	Aggregator  search.AggregatorService
	Cache       search.CacheService
	RateLimiter search.RateLimiter
	Metrics     *obs.Metrics
	Logger      *slog.Logger
}

func New(cfg *config.Config) *App {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	registry := prometheus.NewRegistry()
	metrics := obs.NewMetrics(registry)

	seven := seveneleven.NewClient(cfg.SevenBaseURL, cfg.SevenMidV, cfg.ProviderTimeout, logger, metrics)
	fami := famimart.NewClient(cfg.FamiMapBaseURL, cfg.FamiStoreQueryURL, cfg.FamiDirectoryURL, cfg.ProviderTimeout, logger, metrics)

	agg := search.NewAggregator(seven, fami, cfg.SearchRadiusMeters, cfg.ComputeTimeout, metrics, logger)
	cache := search.NewCache(cfg.CacheTTL, metrics)
	svc := search.NewService(agg, cache, cfg.ComputeTimeout)
	products := search.NewProductService(seven, fami)
	loader := search.NewCategoryLoader(products, cfg.EnrichLimit, cfg.EnrichStagger)
	locator := location.NewStatic(models.Coordinate{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng})
	rl := search.NewIPRateLimiter(cfg.RateLimitBurst, cfg.RateLimitWindow)

	h := handlers.NewHandler(svc, products, loader, locator, rl, metrics)
	router := routes.GetRoutes(h, metrics, logger)

	return &App{
		Router:      router,
		Aggregator:  agg,
		Cache:       cache,
		RateLimiter: rl,
		Metrics:     metrics,
		Logger:      logger,
	}
}
