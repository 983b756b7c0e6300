package search

import (
	"context"
	"fmt"
	"time"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

type ServiceManagement interface {
	SearchByLocation(ctx context.Context, center models.Coordinate) (Result, error)
	SearchByKeyword(ctx context.Context, keyword string) (Result, error)
}

type service struct {
	agg            AggregatorService
	cache          CacheService
	computeTimeout time.Duration
}

func NewService(ag AggregatorService, ch CacheService, t time.Duration) *service {
	return &service{
		agg:            ag,
		cache:          ch,
		computeTimeout: t,
	}
}

func (s *service) SearchByLocation(ctx context.Context, center models.Coordinate) (Result, error) {
	// Four-decimal key: ~11 m grid, close enough to share results.
	cacheKey := fmt.Sprintf("loc|%.4f|%.4f", center.Lat, center.Lng)

	cctx, cancel := context.WithTimeout(ctx, s.computeTimeout)
	defer cancel()

	return s.cache.GetOrCompute(cctx, cacheKey, func(ctx context.Context) (Result, error) {
		return s.agg.SearchByLocation(ctx, center), nil
	})
}

func (s *service) SearchByKeyword(ctx context.Context, keyword string) (Result, error) {
	cacheKey := "kw|" + keyword

	cctx, cancel := context.WithTimeout(ctx, s.computeTimeout)
	defer cancel()

	return s.cache.GetOrCompute(cctx, cacheKey, func(ctx context.Context) (Result, error) {
		return s.agg.SearchByKeyword(ctx, keyword), nil
	})
}
