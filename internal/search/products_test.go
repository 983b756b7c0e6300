package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
	"github.com/Jeffrey0117/isnowfriend/internal/providers/famimart"
	"github.com/Jeffrey0117/isnowfriend/internal/providers/seveneleven"
)

// detailTracker fails the test if the legacy detail endpoint gets hit.
type detailTracker struct {
	stubSeven
	called bool
}

func (d *detailTracker) StoreDetail(ctx context.Context, storeNo string) *seveneleven.StoreDetail {
	d.called = true
	return d.detail
}

func TestStoreProductsEnrichedSkipsDetail(t *testing.T) {
	seven := &detailTracker{}
	svc := NewProductService(seven, &stubFami{})

	store := models.UnifiedStore{
		ID:          "s1",
		Type:        models.StoreTypeSevenEleven,
		ProviderKey: "s1",
		Categories: []models.StoreCategory{
			{CategoryID: 1, CategoryName: "Bento", Qty: 3},
		},
	}

	res := svc.StoreProducts(context.Background(), store)
	require.NotNil(t, res)
	require.Len(t, res.Categories, 1)

	cat := res.Categories[0]
	assert.Equal(t, "Bento", cat.Name)
	assert.Equal(t, 3, cat.TotalQty)
	require.Len(t, cat.Items, 1)
	assert.Equal(t, 3, cat.Items[0].Qty)
	assert.Equal(t, 0.0, cat.Items[0].Price)

	assert.False(t, seven.called, "enriched store must not fall back to the detail endpoint")
}

func TestStoreProductsLegacyDetailFlattening(t *testing.T) {
	detail := &seveneleven.StoreDetail{
		CategoryStockItems: []seveneleven.DetailCategory{
			{
				Name:     "Fresh Food",
				ImageURL: "http://img/fresh",
				Children: []seveneleven.DetailChild{
					{StockItems: []seveneleven.StockItem{
						{ItemName: "Onigiri", RemainingQty: 2, Price: 35},
						{ItemName: "Sandwich", RemainingQty: 1, Price: 45},
					}},
					{StockItems: []seveneleven.StockItem{
						{ItemName: "Salad", RemainingQty: 4, Price: 60},
					}},
				},
			},
			{Name: "Empty", Children: []seveneleven.DetailChild{{}}},
		},
	}
	svc := NewProductService(&stubSeven{detail: detail}, &stubFami{})

	store := models.UnifiedStore{ID: "s2", Type: models.StoreTypeSevenEleven, ProviderKey: "s2"}
	res := svc.StoreProducts(context.Background(), store)

	require.NotNil(t, res)
	require.Len(t, res.Categories, 1, "category without items is dropped")
	cat := res.Categories[0]
	assert.Equal(t, "Fresh Food", cat.Name)
	assert.Equal(t, 7, cat.TotalQty)
	assert.Len(t, cat.Items, 3)
}

func TestStoreProductsLegacyDetailUnavailable(t *testing.T) {
	svc := NewProductService(&stubSeven{}, &stubFami{})
	store := models.UnifiedStore{ID: "s3", Type: models.StoreTypeSevenEleven, ProviderKey: "s3"}
	assert.Nil(t, svc.StoreProducts(context.Background(), store))
}

func TestStoreProductsFamiMart(t *testing.T) {
	fami := &stubFami{products: []famimart.ProductCategory{
		{
			CategoryName: "Bread",
			ImageURL:     "http://img/bread",
			Products:     []famimart.Product{{Name: "Toast", Qty: 2}},
		},
		{
			// older field-name generation
			Name:     "Desserts",
			URL:      "http://img/dessert",
			Products: []famimart.Product{{Name: "Pudding", Qty: 1}},
		},
		{CategoryName: "Empty"},
	}}
	svc := NewProductService(&stubSeven{}, fami)

	store := models.UnifiedStore{ID: "f1", Type: models.StoreTypeFamilyMart, ProviderKey: "f1"}
	res := svc.StoreProducts(context.Background(), store)

	require.NotNil(t, res)
	require.Len(t, res.Categories, 2)
	assert.Equal(t, "Bread", res.Categories[0].Name)
	assert.Equal(t, "http://img/bread", res.Categories[0].ImageURL)
	assert.Equal(t, "Desserts", res.Categories[1].Name)
	assert.Equal(t, "http://img/dessert", res.Categories[1].ImageURL)
}

func TestStoreProductsFamiMartUnavailable(t *testing.T) {
	svc := NewProductService(&stubSeven{}, &stubFami{})
	store := models.UnifiedStore{ID: "f2", Type: models.StoreTypeFamilyMart, ProviderKey: "f2"}
	assert.Nil(t, svc.StoreProducts(context.Background(), store))
}

func TestStoreProductsUnknownType(t *testing.T) {
	svc := NewProductService(&stubSeven{}, &stubFami{})
	store := models.UnifiedStore{ID: "x", Type: models.StoreType("bodega"), Raw: json.RawMessage(`{}`)}
	assert.Nil(t, svc.StoreProducts(context.Background(), store))
}
