package seveneleven

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Jeffrey0117/isnowfriend/internal/geo"
	"github.com/Jeffrey0117/isnowfriend/internal/models"
	"github.com/Jeffrey0117/isnowfriend/internal/obs"
)

const ProviderName = "7-11"

const (
	pathAccessToken     = "Auth/FrontendAuth/AccessToken"
	pathCategoryList    = "Master/FrontendItemCategory/GetList"
	pathStoreByAddress  = "Master/FrontendStore/GetStoreByAddress"
	pathNearbyStoreList = "Search/FrontendStoreItemStock/GetNearbyStoreList"
	pathStoreDetail     = "Search/FrontendStoreItemStock/GetStoreDetail"
)

const tokenTTL = time.Hour

// ErrAuth means the access-token exchange itself failed. Callers must not
// retry inline; the aggregator degrades instead.
var ErrAuth = errors.New("seveneleven: token exchange failed")

// Client talks to the OpenPoint LoveFood API. Token and category taxonomy
// are cached per instance; a concurrent double-fetch is wasteful but safe
// (last write wins).
type Client struct {
	httpc   *http.Client
	baseURL string
	midV    string
	limiter *rate.Limiter
	log     *slog.Logger
	metrics *obs.Metrics

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	taxonomy    []CategoryNode
	taxonomyOK  bool
}

func NewClient(baseURL, midV string, timeout time.Duration, log *slog.Logger, m *obs.Metrics) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		baseURL: baseURL,
		midV:    midV,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		log:     log,
		metrics: m,
	}
}

// envelope is the wrapper every LoveFood response uses.
type envelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Element   json.RawMessage `json:"element"`
}

// Token returns a cached access token while it is still valid, otherwise
// performs the exchange with the partner credential and caches the result
// for an hour.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("seveneleven: %w", err)
	}

	u := c.baseURL + pathAccessToken + "?mid_v=" + url.QueryEscape(c.midV)
	env, err := c.postJSON(ctx, u, struct{}{})
	if err != nil {
		return "", errors.Join(ErrAuth, err)
	}
	var tok string
	if !env.IsSuccess || json.Unmarshal(env.Element, &tok) != nil || tok == "" {
		return "", ErrAuth
	}

	c.mu.Lock()
	c.token = tok
	c.tokenExpiry = time.Now().Add(tokenTTL)
	c.mu.Unlock()

	c.metrics.IncTokenRefresh()
	return tok, nil
}

// FoodCategories returns the category taxonomy, fetching it once per
// client lifetime. Failures yield an empty taxonomy: image enrichment is
// best-effort and must never sink a search.
func (c *Client) FoodCategories(ctx context.Context) []CategoryNode {
	c.mu.Lock()
	if c.taxonomyOK {
		nodes := c.taxonomy
		c.mu.Unlock()
		return nodes
	}
	c.mu.Unlock()

	tok, err := c.Token(ctx)
	if err != nil {
		c.fail("food categories", err)
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	u := c.baseURL + pathCategoryList + "?token=" + url.QueryEscape(tok)
	env, err := c.postJSON(ctx, u, struct{}{})
	if err != nil {
		c.fail("food categories", err)
		return nil
	}
	var nodes []CategoryNode
	if !env.IsSuccess || json.Unmarshal(env.Element, &nodes) != nil {
		c.fail("food categories", errors.New("unexpected response shape"))
		return nil
	}

	c.mu.Lock()
	c.taxonomy = nodes
	c.taxonomyOK = true
	c.mu.Unlock()
	return nodes
}

// CategoryImageURL resolves a leaf category node to its parent category's
// image. Returns "" when the taxonomy has no match.
func (c *Client) CategoryImageURL(nodeID int) string {
	c.mu.Lock()
	nodes := c.taxonomy
	c.mu.Unlock()

	for _, parent := range nodes {
		for _, child := range parent.Children {
			if child.ID == nodeID {
				return parent.ImageURL
			}
		}
	}
	return ""
}

// SearchByLocation fetches nearby stores with their remaining stock per
// category. The returned records carry the enriched shape (non-empty
// Categories). Any failure yields an empty slice; one provider's outage
// must never block the other.
func (c *Client) SearchByLocation(ctx context.Context, center models.Coordinate, radiusMeters int) []StoreRecord {
	start := time.Now()
	defer func() {
		c.metrics.ObserveProviderLatency(ProviderName, time.Since(start).Seconds())
	}()

	// Taxonomy first so category imagery can be resolved below.
	c.FoodCategories(ctx)

	tok, err := c.Token(ctx)
	if err != nil {
		c.fail("nearby search", err)
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	body := nearbyRequest{
		CurrentLocation: wireCoordinate{Latitude: center.Lat, Longitude: center.Lng},
		SearchLocation:  wireCoordinate{Latitude: center.Lat, Longitude: center.Lng},
	}
	u := c.baseURL + pathNearbyStoreList + "?token=" + url.QueryEscape(tok)
	env, err := c.postJSON(ctx, u, body)
	if err != nil {
		c.fail("nearby search", err)
		return nil
	}
	var payload struct {
		StoreStockItemList []nearbyStore `json:"StoreStockItemList"`
	}
	if !env.IsSuccess || json.Unmarshal(env.Element, &payload) != nil {
		c.fail("nearby search", errors.New("unexpected response shape"))
		return nil
	}

	records := make([]StoreRecord, 0, len(payload.StoreStockItemList))
	for _, s := range payload.StoreStockItemList {
		records = append(records, c.mapNearbyStore(center, s))
	}
	return records
}

func (c *Client) mapNearbyStore(center models.Coordinate, s nearbyStore) StoreRecord {
	cats := make([]models.StoreCategory, 0, len(s.CategoryStockItems))
	for _, cat := range s.CategoryStockItems {
		img := c.CategoryImageURL(cat.NodeID)
		if img == "" {
			img = placeholderImageURL(cat.Name)
		}
		cats = append(cats, models.StoreCategory{
			CategoryID:   cat.NodeID,
			CategoryName: cat.Name,
			Qty:          cat.RemainingQty,
			ImageURL:     img,
		})
	}

	loc := models.Coordinate{Lat: s.Latitude.Float(), Lng: s.Longitude.Float()}
	if loc.IsZero() {
		loc = center
	}

	var distText string
	if s.Distance > 0 {
		// Provider-supplied distance is authoritative; format it as-is.
		distText = geo.FormatDistance(s.Distance)
	}

	raw, _ := json.Marshal(s)
	return StoreRecord{
		ID:                s.StoreNo,
		StoreNo:           s.StoreNo,
		Name:              s.StoreName,
		Address:           s.Address,
		Distance:          s.Distance,
		DistanceText:      distText,
		IsOperating:       s.IsOperateTime,
		TotalRemainingQty: s.RemainingQty,
		Location:          loc,
		Categories:        cats,
		Raw:               raw,
	}
}

// SearchByAddress is the token-gated keyword search. Records come back in
// the provider's legacy shape; normalization happens in the aggregator.
func (c *Client) SearchByAddress(ctx context.Context, keyword string) []json.RawMessage {
	tok, err := c.Token(ctx)
	if err != nil {
		c.fail("address search", err)
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	u := c.baseURL + pathStoreByAddress +
		"?token=" + url.QueryEscape(tok) +
		"&keyword=" + url.QueryEscape(keyword)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.fail("address search", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.fail("address search", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.fail("address search", errors.New("unexpected status "+resp.Status))
		return nil
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.fail("address search", err)
		return nil
	}
	return records
}

// StoreDetail fetches the nested category -> child -> stock tree for one
// store. Legacy fallback path only; nil on any failure.
func (c *Client) StoreDetail(ctx context.Context, storeNo string) *StoreDetail {
	tok, err := c.Token(ctx)
	if err != nil {
		c.fail("store detail", err)
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	u := c.baseURL + pathStoreDetail + "?token=" + url.QueryEscape(tok)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, marshalBody(detailRequest{StoreNo: storeNo}))
	if err != nil {
		c.fail("store detail", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.fail("store detail", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.fail("store detail", errors.New("unexpected status "+resp.Status))
		return nil
	}

	var detail StoreDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		c.fail("store detail", err)
		return nil
	}
	return &detail
}

func (c *Client) postJSON(ctx context.Context, u string, body any) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, marshalBody(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status " + resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *Client) fail(op string, err error) {
	c.metrics.IncProviderFailure(ProviderName)
	if c.log != nil {
		c.log.Warn("7-11 provider call failed", "op", op, "error", err.Error())
	}
}

func marshalBody(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func placeholderImageURL(name string) string {
	return "https://via.placeholder.com/100/f5f5f5/666?text=" + url.QueryEscape(name)
}
