package famimart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/Jeffrey0117/isnowfriend/internal/geo"
	"github.com/Jeffrey0117/isnowfriend/internal/models"
	"github.com/Jeffrey0117/isnowfriend/internal/obs"
)

const ProviderName = "familymart"

const pathMapProductInfo = "/MapProductInfo"

// Client serves FamilyMart data from two sources: a large static store
// directory (fetched once and cached for the process lifetime; it
// changes out-of-band and rarely) and the live map API for per-store
// product stock.
type Client struct {
	httpc         *http.Client
	mapBaseURL    string
	storeQueryURL string
	directoryURL  string
	limiter       *rate.Limiter
	log           *slog.Logger
	metrics       *obs.Metrics

	mu          sync.Mutex
	directory   []StoreRecord
	directoryOK bool
}

func NewClient(mapBaseURL, storeQueryURL, directoryURL string, timeout time.Duration, log *slog.Logger, m *obs.Metrics) *Client {
	return &Client{
		httpc:         &http.Client{Timeout: timeout},
		mapBaseURL:    mapBaseURL,
		storeQueryURL: storeQueryURL,
		directoryURL:  directoryURL,
		limiter:       rate.NewLimiter(rate.Limit(5), 5),
		log:           log,
		metrics:       m,
	}
}

// Directory returns the full static store list, fetching it at most once.
// Empty on failure; the next call retries.
func (c *Client) Directory(ctx context.Context) []StoreRecord {
	c.mu.Lock()
	if c.directoryOK {
		dir := c.directory
		c.mu.Unlock()
		return dir
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.directoryURL, nil)
	if err != nil {
		c.fail("directory", err)
		return nil
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.fail("directory", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.fail("directory", errors.New("unexpected status "+resp.Status))
		return nil
	}

	var stores []StoreRecord
	if err := json.NewDecoder(resp.Body).Decode(&stores); err != nil {
		c.fail("directory", err)
		return nil
	}

	c.mu.Lock()
	c.directory = stores
	c.directoryOK = true
	c.mu.Unlock()
	return stores
}

// SearchByLocation filters the directory by great-circle distance. The
// dataset never carries distances, so every entry is measured here. An
// O(n) scan over the national store list, once per search.
func (c *Client) SearchByLocation(ctx context.Context, center models.Coordinate, radiusKm float64) []StoreRecord {
	start := time.Now()
	defer func() {
		c.metrics.ObserveProviderLatency(ProviderName, time.Since(start).Seconds())
	}()

	stores := c.Directory(ctx)
	maxMeters := radiusKm * 1000

	return lo.Filter(stores, func(s StoreRecord, _ int) bool {
		loc, ok := s.Coordinate()
		if !ok {
			return false
		}
		return geo.Distance(center, loc) <= maxMeters
	})
}

// SearchByKeyword hits the live store-name dropdown endpoint.
func (c *Client) SearchByKeyword(ctx context.Context, keyword string) []StoreRecord {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	u := c.storeQueryURL + "?StoreName=" + url.QueryEscape(keyword)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.fail("keyword search", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.fail("keyword search", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.fail("keyword search", errors.New("unexpected status "+resp.Status))
		return nil
	}

	var stores []StoreRecord
	if err := json.NewDecoder(resp.Body).Decode(&stores); err != nil {
		c.fail("keyword search", err)
		return nil
	}
	return stores
}

// StoreProducts fetches live product stock for one store. Nil on failure;
// the caller treats nil as "no discount data", not an error.
func (c *Client) StoreProducts(ctx context.Context, storeID string, at models.Coordinate) []ProductCategory {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	body, _ := json.Marshal(productRequest{StoreID: storeID, Lat: at.Lat, Lon: at.Lng})
	u := c.mapBaseURL + pathMapProductInfo
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		c.fail("store products", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.fail("store products", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.fail("store products", errors.New("unexpected status "+resp.Status))
		return nil
	}

	var categories []ProductCategory
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		c.fail("store products", err)
		return nil
	}
	return categories
}

func (c *Client) fail(op string, err error) {
	c.metrics.IncProviderFailure(ProviderName)
	if c.log != nil {
		c.log.Warn("familymart provider call failed", "op", op, "error", err.Error())
	}
}
