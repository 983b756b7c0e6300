package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Jeffrey0117/isnowfriend/internal/geo"
	"github.com/Jeffrey0117/isnowfriend/internal/models"
	"github.com/Jeffrey0117/isnowfriend/internal/obs"
	"github.com/Jeffrey0117/isnowfriend/internal/providers/famimart"
	"github.com/Jeffrey0117/isnowfriend/internal/providers/seveneleven"
)

// Aggregator fans out to both chains, normalizes their records into the
// unified schema, merges and ranks by distance. It is a pure data-merge
// layer: zero-inventory stores are kept, filtering is the caller's call.
type Aggregator struct {
	seven        SevenElevenProvider
	fami         FamiMartProvider
	radiusMeters int
	timeout      time.Duration
	metrics      *obs.Metrics
	log          *slog.Logger
}

func NewAggregator(seven SevenElevenProvider, fami FamiMartProvider, radiusMeters int, timeout time.Duration, m *obs.Metrics, log *slog.Logger) *Aggregator {
	return &Aggregator{
		seven:        seven,
		fami:         fami,
		radiusMeters: radiusMeters,
		timeout:      timeout,
		metrics:      m,
		log:          log,
	}
}

// SearchByLocation runs both providers concurrently and merges whatever
// settled. The adapters are already fail-soft; the recover guards make
// even a panicking adapter indistinguishable from an empty one, so one
// side can never take down the other's results.
func (a *Aggregator) SearchByLocation(ctx context.Context, center models.Coordinate) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		wg                      sync.WaitGroup
		sevenRecs               []seveneleven.StoreRecord
		famiRecs                []famimart.StoreRecord
		sevenFailed, famiFailed bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer a.recoverProvider(seveneleven.ProviderName, &sevenFailed)
		sevenRecs = a.seven.SearchByLocation(ctx, center, a.radiusMeters)
	}()
	go func() {
		defer wg.Done()
		defer a.recoverProvider(famimart.ProviderName, &famiFailed)
		famiRecs = a.fami.SearchByLocation(ctx, center, float64(a.radiusMeters)/1000)
	}()
	wg.Wait()

	stores := make([]models.UnifiedStore, 0, len(sevenRecs)+len(famiRecs))
	for _, r := range sevenRecs {
		stores = append(stores, normalizeSevenEleven(center, r))
	}
	for _, r := range famiRecs {
		if s, ok := normalizeFamiMart(center, r); ok {
			stores = append(stores, s)
		}
	}

	// Ties keep input order: 7-ELEVEN results before FamilyMart.
	sort.SliceStable(stores, func(i, j int) bool {
		return stores[i].DistanceMeters < stores[j].DistanceMeters
	})

	out := Result{Stores: stores}
	if len(stores) == 0 {
		if a.log != nil {
			a.log.Warn("both providers empty, serving demo data")
		}
		a.metrics.IncFallback()
		out.Stores = MockStores(center)
		out.Stats.Mock = true
	}
	fillProviderStats(&out.Stats, sevenFailed, famiFailed)
	out.Stats.StoresTotal = len(out.Stores)
	out.Stats.DurationMs = time.Since(start).Milliseconds()
	return out
}

// SearchByKeyword is the same fan-out without a coordinate: no distance,
// no ranking, no demo fallback.
func (a *Aggregator) SearchByKeyword(ctx context.Context, keyword string) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		wg                      sync.WaitGroup
		sevenRecs               []json.RawMessage
		famiRecs                []famimart.StoreRecord
		sevenFailed, famiFailed bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer a.recoverProvider(seveneleven.ProviderName, &sevenFailed)
		sevenRecs = a.seven.SearchByAddress(ctx, keyword)
	}()
	go func() {
		defer wg.Done()
		defer a.recoverProvider(famimart.ProviderName, &famiFailed)
		famiRecs = a.fami.SearchByKeyword(ctx, keyword)
	}()
	wg.Wait()

	stores := make([]models.UnifiedStore, 0, len(sevenRecs)+len(famiRecs))
	for _, raw := range sevenRecs {
		if s, ok := normalizeLegacySevenEleven(models.Coordinate{}, raw, 0); ok {
			stores = append(stores, s)
		}
	}
	// Keyword results may lack coordinates entirely; they are kept and
	// distance stays zero.
	for _, r := range famiRecs {
		if s, ok := normalizeFamiMart(models.Coordinate{}, r); ok {
			stores = append(stores, s)
		}
	}

	out := Result{Stores: stores}
	fillProviderStats(&out.Stats, sevenFailed, famiFailed)
	out.Stats.StoresTotal = len(stores)
	out.Stats.DurationMs = time.Since(start).Milliseconds()
	return out
}

// A provider counts as failed only when its goroutine panicked; the
// adapters map their own upstream errors to empty results, which are
// indistinguishable from genuinely empty areas here.
func fillProviderStats(stats *ResultStats, sevenFailed, famiFailed bool) {
	failed := 0
	if sevenFailed {
		failed++
	}
	if famiFailed {
		failed++
	}
	stats.ProvidersTotal = 2
	stats.ProvidersSucceeded = 2 - failed
	stats.ProvidersFailed = failed
	stats.Cache = "miss"
}

func (a *Aggregator) recoverProvider(name string, failed *bool) {
	if r := recover(); r != nil {
		*failed = true
		if a.log != nil {
			a.log.Error("provider panic recovered", "provider", name, "panic", r)
		}
		a.metrics.IncProviderFailure(name)
	}
}

// normalizeSevenEleven turns an adapter record into a UnifiedStore. The
// one and only enriched-vs-legacy predicate is a non-empty Categories
// slice; both shapes coexist across upstream API versions, so a type tag
// would lie.
func normalizeSevenEleven(center models.Coordinate, r seveneleven.StoreRecord) models.UnifiedStore {
	if len(r.Categories) > 0 {
		loc := r.Location
		if loc.IsZero() {
			loc = center
		}
		return models.UnifiedStore{
			ID:                r.ID,
			Name:              r.Name,
			Type:              models.StoreTypeSevenEleven,
			Address:           r.Address,
			Location:          loc,
			DistanceMeters:    r.Distance,
			DistanceText:      r.DistanceText,
			ProviderKey:       r.StoreNo,
			IsOperating:       r.IsOperating,
			TotalRemainingQty: r.TotalRemainingQty,
			Categories:        r.Categories,
			Raw:               r.Raw,
		}
	}

	if s, ok := normalizeLegacySevenEleven(center, r.Raw, r.Distance); ok {
		return s
	}
	// Raw was unusable; keep what the record itself carried.
	return models.UnifiedStore{
		ID:           r.ID,
		Name:         r.Name,
		Type:         models.StoreTypeSevenEleven,
		Address:      r.Address,
		Location:     center,
		ProviderKey:  r.StoreNo,
		IsOperating:  true,
		Raw:          r.Raw,
		DistanceText: r.DistanceText,
	}
}

// normalizeLegacySevenEleven maps the older field-name generation
// (StoreNo/POIID, StoreName/POIName, Latitude/Longitude). Distance is the
// provider's when supplied, computed otherwise.
func normalizeLegacySevenEleven(center models.Coordinate, raw json.RawMessage, providerDistance float64) (models.UnifiedStore, bool) {
	var legacy seveneleven.LegacyStore
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return models.UnifiedStore{}, false
	}

	id := legacy.StoreNo
	if id == "" {
		id = legacy.POIID
	}
	if id == "" {
		return models.UnifiedStore{}, false
	}
	name := legacy.StoreName
	if name == "" && legacy.POIName != "" {
		name = "7-ELEVEN " + legacy.POIName
	}
	addr := legacy.Address
	if addr == "" {
		addr = legacy.AddressLC
	}

	loc := models.Coordinate{Lat: legacy.Latitude.Float(), Lng: legacy.Longitude.Float()}
	if loc.IsZero() {
		loc = models.Coordinate{Lat: legacy.Lat.Float(), Lng: legacy.Lng.Float()}
	}

	s := models.UnifiedStore{
		ID:          id,
		Name:        name,
		Type:        models.StoreTypeSevenEleven,
		Address:     addr,
		Location:    loc,
		ProviderKey: id,
		IsOperating: true,
		Raw:         raw,
	}

	if !center.IsZero() {
		dist := providerDistance
		if dist == 0 {
			dist = legacy.Distance
		}
		if dist == 0 && !loc.IsZero() {
			dist = geo.Distance(center, loc)
		}
		s.DistanceMeters = dist
		s.DistanceText = geo.FormatDistance(dist)
	}
	return s, true
}

// normalizeFamiMart maps a raw directory/keyword record. FamilyMart never
// supplies distance, so it is always computed here.
func normalizeFamiMart(center models.Coordinate, r famimart.StoreRecord) (models.UnifiedStore, bool) {
	loc, hasLoc := r.Coordinate()

	raw, _ := json.Marshal(r)
	s := models.UnifiedStore{
		ID:          r.ID(),
		Name:        r.DisplayName(),
		Type:        models.StoreTypeFamilyMart,
		Address:     r.DisplayAddress(),
		Phone:       r.DisplayPhone(),
		Location:    loc,
		ProviderKey: r.ID(),
		IsOperating: true,
		Raw:         raw,
	}
	if s.ID == "" {
		return s, false
	}

	if !center.IsZero() && hasLoc {
		dist := geo.Distance(center, loc)
		s.DistanceMeters = dist
		s.DistanceText = geo.FormatDistance(dist)
	}
	return s, hasLoc || center.IsZero()
}
