package http

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Jeffrey0117/isnowfriend/internal/discount"
	"github.com/Jeffrey0117/isnowfriend/internal/location"
	"github.com/Jeffrey0117/isnowfriend/internal/models"
	"github.com/Jeffrey0117/isnowfriend/internal/obs"
	"github.com/Jeffrey0117/isnowfriend/internal/search"
)

type Handler struct {
	service     search.ServiceManagement
	products    *search.ProductService
	loader      *search.CategoryLoader
	locator     location.Service
	ratelimiter search.RateLimiter
	metrics     *obs.Metrics
	now         func() time.Time
}

func NewHandler(svc search.ServiceManagement, products *search.ProductService, loader *search.CategoryLoader, locator location.Service, rl search.RateLimiter, m *obs.Metrics) *Handler {
	return &Handler{
		service:     svc,
		products:    products,
		loader:      loader,
		locator:     locator,
		ratelimiter: rl,
		metrics:     m,
		now:         time.Now,
	}
}

func (h *Handler) ipFromRequest(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (h *Handler) requestID(r *http.Request) string {
	// chi's middleware.RequestID sets X-Request-Id header
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		return rid
	}
	return uuid.New().String()
}

// Search answers the nearby-store view. Brand and in-stock filtering are
// applied here, on the caller side of the aggregator, per its merge-only
// contract.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.metrics.IncRequests()
	reqID := h.requestID(r)

	q := r.URL.Query()

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		pos, err := h.locator.CurrentPosition(ctx)
		if err != nil {
			BadRequest(w, location.UserMessage(err), map[string]string{"request_id": reqID})
			return
		}
		latStr, lngStr = formatCoord(pos.Lat), formatCoord(pos.Lng)
	}

	req, err := models.NewLocationSearchRequest(latStr, lngStr, q.Get("brand"), q.Get("only_in_stock"))
	if err != nil {
		BadRequest(w, err.Error(), map[string]string{"request_id": reqID})
		return
	}
	if err := req.Validate(); err != nil {
		BadRequest(w, err.Error(), map[string]string{"request_id": reqID})
		return
	}

	ip := h.ipFromRequest(r)
	if !h.ratelimiter.Allow(ip) {
		h.metrics.IncRateLimitDrops()
		TooManyRequests(w, "rate limit exceeded", map[string]string{"request_id": reqID})
		return
	}

	res, err := h.service.SearchByLocation(ctx, req.Location)
	if err != nil {
		InternalError(w, err.Error(), map[string]string{"request_id": reqID})
		return
	}

	stores := res.Stores
	if req.HasBrand {
		stores = filterStores(stores, func(s models.UnifiedStore) bool { return s.Type == req.Brand })
	}
	if req.OnlyInStock {
		stores = filterStores(stores, models.UnifiedStore.HasInventory)
	}

	if q.Get("enrich") != "0" {
		stores = h.loader.Load(ctx, stores)
	}

	out := map[string]any{
		"search": map[string]any{"lat": req.Location.Lat, "lng": req.Location.Lng},
		"stats":  res.Stats,
		"stores": stores,
	}
	if res.Stats.Mock {
		out["warning"] = "providers unavailable, showing demo data"
	}

	WriteJSON(w, http.StatusOK, out)
}

// SearchKeyword backs the search-as-you-type suggestions. No coordinate,
// so no distance and no demo fallback.
func (h *Handler) SearchKeyword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.metrics.IncRequests()
	reqID := h.requestID(r)

	req, err := models.NewKeywordSearchRequest(r.URL.Query().Get("q"))
	if err != nil {
		BadRequest(w, err.Error(), map[string]string{"request_id": reqID})
		return
	}

	ip := h.ipFromRequest(r)
	if !h.ratelimiter.Allow(ip) {
		h.metrics.IncRateLimitDrops()
		TooManyRequests(w, "rate limit exceeded", map[string]string{"request_id": reqID})
		return
	}

	res, err := h.service.SearchByKeyword(ctx, req.Keyword)
	if err != nil {
		InternalError(w, err.Error(), map[string]string{"request_id": reqID})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"search": map[string]any{"q": req.Keyword},
		"stats":  res.Stats,
		"stores": res.Stores,
	})
}

// StoreProducts loads one selected store's catalog. The client posts the
// unified store record it got from a search; enriched 7-ELEVEN records
// resolve without another upstream call.
func (h *Handler) StoreProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := h.requestID(r)

	var store models.UnifiedStore
	if err := json.NewDecoder(r.Body).Decode(&store); err != nil {
		BadRequest(w, "invalid store payload", map[string]string{"request_id": reqID})
		return
	}
	if _, ok := models.ParseStoreType(string(store.Type)); !ok {
		BadRequest(w, "unknown store type", map[string]string{"request_id": reqID})
		return
	}
	if store.ProviderKey == "" {
		store.ProviderKey = store.ID
	}
	if store.ProviderKey == "" {
		BadRequest(w, "missing store id", map[string]string{"request_id": reqID})
		return
	}

	products := h.products.StoreProducts(ctx, store)
	if products == nil {
		NotFound(w, "no discount data available for this store", map[string]string{"request_id": reqID})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"store":      products.Store,
		"categories": products.Categories,
		"discount":   discount.Current(h.now(), store.Type),
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func filterStores(stores []models.UnifiedStore, keep func(models.UnifiedStore) bool) []models.UnifiedStore {
	out := make([]models.UnifiedStore, 0, len(stores))
	for _, s := range stores {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func formatCoord(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
