package search

import (
	"context"
	"encoding/json"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
	"github.com/Jeffrey0117/isnowfriend/internal/providers/famimart"
	"github.com/Jeffrey0117/isnowfriend/internal/providers/seveneleven"
)

// SevenElevenProvider is the slice of the 7-ELEVEN client the search layer
// consumes. All methods are fail-soft: upstream trouble comes back as
// empty/nil, never as an error.
type SevenElevenProvider interface {
	SearchByLocation(ctx context.Context, center models.Coordinate, radiusMeters int) []seveneleven.StoreRecord
	SearchByAddress(ctx context.Context, keyword string) []json.RawMessage
	StoreDetail(ctx context.Context, storeNo string) *seveneleven.StoreDetail
}

// FamiMartProvider is the slice of the FamilyMart client the search layer
// consumes. Same fail-soft contract.
type FamiMartProvider interface {
	SearchByLocation(ctx context.Context, center models.Coordinate, radiusKm float64) []famimart.StoreRecord
	SearchByKeyword(ctx context.Context, keyword string) []famimart.StoreRecord
	StoreProducts(ctx context.Context, storeID string, at models.Coordinate) []famimart.ProductCategory
}

// Result is what one search returns: the merged store list plus stats for
// the response envelope.
type Result struct {
	Stats  ResultStats           `json:"stats"`
	Stores []models.UnifiedStore `json:"stores"`
}

type ResultStats struct {
	ProvidersTotal     int    `json:"providers_total"`
	ProvidersSucceeded int    `json:"providers_succeeded"`
	ProvidersFailed    int    `json:"providers_failed"`
	StoresTotal        int    `json:"stores_total"`
	Mock               bool   `json:"mock"`
	Cache              string `json:"cache"`
	DurationMs         int64  `json:"duration_ms"`
}

type AggregatorService interface {
	SearchByLocation(ctx context.Context, center models.Coordinate) Result
	SearchByKeyword(ctx context.Context, keyword string) Result
}

type RateLimiter interface {
	Allow(key string) bool
}
