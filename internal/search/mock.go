package search

import (
	"sort"

	"github.com/Jeffrey0117/isnowfriend/internal/geo"
	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

// MockStores is the demo dataset served when both providers come back
// empty. Five fixed stores at small offsets around the query point,
// flagged IsMock so the UI can warn the user. This is the only place
// synthetic data enters the pipeline.
func MockStores(center models.Coordinate) []models.UnifiedStore {
	type seed struct {
		id, name, addr, phone string
		storeType             models.StoreType
		dLat, dLng            float64
	}
	seeds := []seed{
		{"demo-711-1", "7-ELEVEN Xinyi", "No. 7, Sec. 5, Xinyi Rd., Xinyi Dist., Taipei", "02-2345-6789", models.StoreTypeSevenEleven, 0.001, 0.001},
		{"demo-711-2", "7-ELEVEN City Hall", "No. 45, Shifu Rd., Xinyi Dist., Taipei", "02-2345-6790", models.StoreTypeSevenEleven, 0.002, -0.001},
		{"demo-family-1", "FamilyMart Xinyi", "No. 123, Songren Rd., Xinyi Dist., Taipei", "02-2345-6791", models.StoreTypeFamilyMart, -0.001, 0.002},
		{"demo-family-2", "FamilyMart World Trade", "No. 5, Sec. 5, Xinyi Rd., Xinyi Dist., Taipei", "02-2345-6792", models.StoreTypeFamilyMart, 0.003, 0.001},
		{"demo-711-3", "7-ELEVEN Songren", "No. 28, Songren Rd., Xinyi Dist., Taipei", "02-2345-6793", models.StoreTypeSevenEleven, -0.002, -0.002},
	}

	stores := make([]models.UnifiedStore, 0, len(seeds))
	for _, s := range seeds {
		loc := models.Coordinate{Lat: center.Lat + s.dLat, Lng: center.Lng + s.dLng}
		dist := geo.Distance(center, loc)
		stores = append(stores, models.UnifiedStore{
			ID:             s.id,
			Name:           s.name,
			Type:           s.storeType,
			Address:        s.addr,
			Phone:          s.phone,
			Location:       loc,
			DistanceMeters: dist,
			DistanceText:   geo.FormatDistance(dist),
			ProviderKey:    s.id,
			IsOperating:    true,
			IsMock:         true,
		})
	}

	sort.SliceStable(stores, func(i, j int) bool {
		return stores[i].DistanceMeters < stores[j].DistanceMeters
	})
	return stores
}
