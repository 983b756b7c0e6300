package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

type stubAggregator struct {
	mu       sync.Mutex
	calls    int
	lastKW   string
	byLoc    Result
	byKW     Result
	locDelay time.Duration
}

func (a *stubAggregator) SearchByLocation(ctx context.Context, center models.Coordinate) Result {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.locDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(a.locDelay):
		}
	}
	return a.byLoc
}

func (a *stubAggregator) SearchByKeyword(ctx context.Context, keyword string) Result {
	a.mu.Lock()
	a.calls++
	a.lastKW = keyword
	a.mu.Unlock()
	return a.byKW
}

type stubCache struct {
	keys []string
	fn   func(ctx context.Context, key string, compute func(ctx context.Context) (Result, error)) (Result, error)
}

func (c *stubCache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (Result, error)) (Result, error) {
	c.keys = append(c.keys, key)
	if c.fn != nil {
		return c.fn(ctx, key, compute)
	}
	return compute(ctx)
}

func TestServiceLocationKeyRoundsToGrid(t *testing.T) {
	agg := &stubAggregator{byLoc: Result{Stats: ResultStats{StoresTotal: 2}}}
	cache := &stubCache{}
	svc := NewService(agg, cache, 2*time.Second)

	res, err := svc.SearchByLocation(context.Background(), models.Coordinate{Lat: 25.03751979, Lng: 121.56367041})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.StoresTotal)

	require.Len(t, cache.keys, 1)
	assert.Equal(t, "loc|25.0375|121.5637", cache.keys[0])

	// a nearby point lands on the same cache key
	_, err = svc.SearchByLocation(context.Background(), models.Coordinate{Lat: 25.03752, Lng: 121.56368})
	require.NoError(t, err)
	assert.Equal(t, cache.keys[0], cache.keys[1])
}

func TestServiceKeywordKey(t *testing.T) {
	agg := &stubAggregator{byKW: Result{Stats: ResultStats{StoresTotal: 1}}}
	cache := &stubCache{}
	svc := NewService(agg, cache, 2*time.Second)

	res, err := svc.SearchByKeyword(context.Background(), "xinyi")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.StoresTotal)
	assert.Equal(t, "xinyi", agg.lastKW)

	require.Len(t, cache.keys, 1)
	assert.Equal(t, "kw|xinyi", cache.keys[0])
}

func TestServiceCacheError(t *testing.T) {
	cache := &stubCache{fn: func(ctx context.Context, key string, compute func(ctx context.Context) (Result, error)) (Result, error) {
		return Result{}, errors.New("cache failed")
	}}
	svc := NewService(&stubAggregator{}, cache, 2*time.Second)

	_, err := svc.SearchByLocation(context.Background(), models.Coordinate{Lat: 25.03, Lng: 121.56})
	require.Error(t, err)
	assert.EqualError(t, err, "cache failed")
}

func TestServiceComputeTimeoutReachesAggregator(t *testing.T) {
	agg := &stubAggregator{locDelay: 200 * time.Millisecond}
	svc := NewService(agg, &stubCache{}, 20*time.Millisecond)

	start := time.Now()
	_, err := svc.SearchByLocation(context.Background(), models.Coordinate{Lat: 25.03, Lng: 121.56})
	require.NoError(t, err, "the aggregator degrades instead of erroring")
	assert.Less(t, time.Since(start), 150*time.Millisecond, "the deadline must cut the provider wait short")
}
