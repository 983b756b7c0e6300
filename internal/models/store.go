package models

import "encoding/json"

// StoreType identifies which chain a store belongs to. It decides which
// product-loading path and which discount schedule apply.
type StoreType string

const (
	StoreTypeSevenEleven StoreType = "7-11"
	StoreTypeFamilyMart  StoreType = "familymart"
)

// ParseStoreType accepts the wire spellings used by the UI.
func ParseStoreType(s string) (StoreType, bool) {
	switch s {
	case "7-11", "711", "seven-eleven":
		return StoreTypeSevenEleven, true
	case "familymart", "family-mart", "family":
		return StoreTypeFamilyMart, true
	}
	return "", false
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) IsZero() bool { return c.Lat == 0 && c.Lng == 0 }

// StoreCategory is one inventory category attached to a store card
// (name, remaining quantity and an image for the grid).
type StoreCategory struct {
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name"`
	Qty          int    `json:"qty"`
	ImageURL     string `json:"image_url"`
}

// UnifiedStore is the single schema both providers are normalized into.
// Instances are built fresh on every search; IDs are only unique within
// one result set.
type UnifiedStore struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Type              StoreType       `json:"type"`
	Address           string          `json:"address"`
	Location          Coordinate      `json:"location"`
	DistanceMeters    float64         `json:"distance"`
	DistanceText      string          `json:"distance_text"`
	ProviderKey       string          `json:"provider_key"`
	Phone             string          `json:"phone,omitempty"`
	IsOperating       bool            `json:"is_operating"`
	TotalRemainingQty int             `json:"total_remaining_qty"`
	Categories        []StoreCategory `json:"categories,omitempty"`
	IsMock            bool            `json:"is_mock,omitempty"`
	Raw               json.RawMessage `json:"raw,omitempty"`
}

// HasInventory reports the caller-side "show this store" policy. The
// aggregator itself never filters on it.
func (s UnifiedStore) HasInventory() bool { return s.TotalRemainingQty > 0 }

type ProductItem struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

type ProductCategory struct {
	Name     string        `json:"name"`
	ImageURL string        `json:"image_url"`
	TotalQty int           `json:"total_qty"`
	Items    []ProductItem `json:"items"`
}

// StoreProducts is the browsing payload for one selected store.
type StoreProducts struct {
	Store      UnifiedStore      `json:"store"`
	Categories []ProductCategory `json:"categories"`
}
