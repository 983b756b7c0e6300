package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCollapse(t *testing.T) {
	cache := NewCache(2*time.Second, nil)
	var calls int32
	fn := func(ctx context.Context) (Result, error) {
		atomic.AddInt32(&calls, 1)
		// simulate some work so the other callers pile up
		time.Sleep(50 * time.Millisecond)
		return Result{Stats: ResultStats{StoresTotal: 3}}, nil
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := cache.GetOrCompute(ctx, "k", fn)
			assert.NoError(t, err)
			assert.Equal(t, 3, res.Stats.StoresTotal)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent callers must collapse into one compute")
}

func TestCacheHitWithinTTL(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	calls := 0
	fn := func(ctx context.Context) (Result, error) {
		calls++
		return Result{Stats: ResultStats{StoresTotal: 1}}, nil
	}

	ctx := context.Background()
	first, err := cache.GetOrCompute(ctx, "loc|25.0375|121.5637", fn)
	require.NoError(t, err)
	assert.Empty(t, first.Stats.Cache)

	second, err := cache.GetOrCompute(ctx, "loc|25.0375|121.5637", fn)
	require.NoError(t, err)
	assert.Equal(t, "hit", second.Stats.Cache)
	assert.Equal(t, 1, calls)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(10*time.Millisecond, nil)
	calls := 0
	fn := func(ctx context.Context) (Result, error) {
		calls++
		return Result{}, nil
	}

	ctx := context.Background()
	_, _ = cache.GetOrCompute(ctx, "k", fn)
	time.Sleep(20 * time.Millisecond)
	_, _ = cache.GetOrCompute(ctx, "k", fn)
	assert.Equal(t, 2, calls, "expired entry must be recomputed")
}

func TestCacheKeysAreIndependent(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	calls := 0
	fn := func(ctx context.Context) (Result, error) {
		calls++
		return Result{}, nil
	}

	ctx := context.Background()
	_, _ = cache.GetOrCompute(ctx, "loc|25.0375|121.5637", fn)
	_, _ = cache.GetOrCompute(ctx, "kw|xinyi", fn)
	assert.Equal(t, 2, calls)
}
