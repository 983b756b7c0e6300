package seveneleven

import (
	"encoding/json"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

// CategoryNode is one entry of the category taxonomy. Only parents carry
// an image; inventory records reference the children by node ID.
type CategoryNode struct {
	ID       int            `json:"ID"`
	Name     string         `json:"Name"`
	ImageURL string         `json:"ImageUrl"`
	Children []CategoryNode `json:"Children"`
}

type wireCoordinate struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

type nearbyRequest struct {
	CurrentLocation wireCoordinate `json:"CurrentLocation"`
	SearchLocation  wireCoordinate `json:"SearchLocation"`
}

type detailRequest struct {
	StoreNo string `json:"storeNo"`
}

// nearbyStore is the upstream record of the nearby-stock endpoint.
type nearbyStore struct {
	StoreNo            string           `json:"StoreNo"`
	StoreName          string           `json:"StoreName"`
	Address            string           `json:"Address"`
	Distance           float64          `json:"Distance"`
	IsOperateTime      bool             `json:"IsOperateTime"`
	RemainingQty       int              `json:"RemainingQty"`
	Latitude           models.FlexFloat `json:"Latitude"`
	Longitude          models.FlexFloat `json:"Longitude"`
	CategoryStockItems []categoryStock  `json:"CategoryStockItems"`
}

type categoryStock struct {
	NodeID       int    `json:"NodeID"`
	Name         string `json:"Name"`
	RemainingQty int    `json:"RemainingQty"`
}

// StoreRecord is the adapter's intermediate shape. Records from the
// nearby-stock endpoint are "enriched" (Categories non-empty); records
// that only carry Raw are legacy and get normalized by the aggregator.
type StoreRecord struct {
	ID                string
	StoreNo           string
	Name              string
	Address           string
	Distance          float64
	DistanceText      string
	IsOperating       bool
	TotalRemainingQty int
	Location          models.Coordinate
	Categories        []models.StoreCategory
	Raw               json.RawMessage
}

// LegacyStore covers the older response shapes of the address search and
// of pre-enrichment inventory records.
type LegacyStore struct {
	StoreNo   string           `json:"StoreNo"`
	POIID     string           `json:"POIID"`
	StoreName string           `json:"StoreName"`
	POIName   string           `json:"POIName"`
	Address   string           `json:"Address"`
	AddressLC string           `json:"address"`
	Latitude  models.FlexFloat `json:"Latitude"`
	Longitude models.FlexFloat `json:"Longitude"`
	Lat       models.FlexFloat `json:"lat"`
	Lng       models.FlexFloat `json:"lng"`
	Distance  float64          `json:"Distance"`
}

// StoreDetail is the nested stock tree of the detail endpoint.
type StoreDetail struct {
	CategoryStockItems []DetailCategory `json:"CategoryStockItems"`
}

type DetailCategory struct {
	Name     string        `json:"Name"`
	ImageURL string        `json:"ImageUrl"`
	Children []DetailChild `json:"Children"`
}

type DetailChild struct {
	Name       string      `json:"Name"`
	StockItems []StockItem `json:"StockItems"`
}

type StockItem struct {
	ItemName     string  `json:"ItemName"`
	RemainingQty int     `json:"RemainingQty"`
	Price        float64 `json:"Price"`
}
