package search

import (
	"context"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

// ProductService reshapes a selected store's catalog into the
// category -> item tree the UI browses, whichever chain the store came
// from. A nil result means "no discount data available", not an error.
type ProductService struct {
	seven SevenElevenProvider
	fami  FamiMartProvider
}

func NewProductService(seven SevenElevenProvider, fami FamiMartProvider) *ProductService {
	return &ProductService{seven: seven, fami: fami}
}

func (s *ProductService) StoreProducts(ctx context.Context, store models.UnifiedStore) *models.StoreProducts {
	switch store.Type {
	case models.StoreTypeSevenEleven:
		// Enriched search results already carry category totals; the
		// search endpoint exposes no line items, so one pseudo-item per
		// category stands in. The detail endpoint must not be hit here.
		if len(store.Categories) > 0 {
			return &models.StoreProducts{
				Store:      store,
				Categories: categoriesFromStock(store.Categories),
			}
		}
		return s.sevenElevenDetail(ctx, store)
	case models.StoreTypeFamilyMart:
		return s.famiMartProducts(ctx, store)
	}
	return nil
}

func categoriesFromStock(stock []models.StoreCategory) []models.ProductCategory {
	out := make([]models.ProductCategory, 0, len(stock))
	for _, cat := range stock {
		out = append(out, models.ProductCategory{
			Name:     cat.CategoryName,
			ImageURL: cat.ImageURL,
			TotalQty: cat.Qty,
			Items: []models.ProductItem{
				{Name: cat.CategoryName, Qty: cat.Qty, Price: 0},
			},
		})
	}
	return out
}

// sevenElevenDetail is the legacy path: walk the detail endpoint's
// category -> child -> stock tree and flatten items under their top
// category. Categories that end up empty are dropped.
func (s *ProductService) sevenElevenDetail(ctx context.Context, store models.UnifiedStore) *models.StoreProducts {
	detail := s.seven.StoreDetail(ctx, store.ProviderKey)
	if detail == nil {
		return nil
	}

	categories := make([]models.ProductCategory, 0, len(detail.CategoryStockItems))
	for _, cat := range detail.CategoryStockItems {
		var items []models.ProductItem
		total := 0
		for _, child := range cat.Children {
			for _, item := range child.StockItems {
				items = append(items, models.ProductItem{
					Name:  item.ItemName,
					Qty:   item.RemainingQty,
					Price: item.Price,
				})
				total += item.RemainingQty
			}
		}
		if len(items) == 0 {
			continue
		}
		categories = append(categories, models.ProductCategory{
			Name:     cat.Name,
			ImageURL: cat.ImageURL,
			TotalQty: total,
			Items:    items,
		})
	}

	return &models.StoreProducts{Store: store, Categories: categories}
}

func (s *ProductService) famiMartProducts(ctx context.Context, store models.UnifiedStore) *models.StoreProducts {
	raw := s.fami.StoreProducts(ctx, store.ProviderKey, store.Location)
	if raw == nil {
		return nil
	}

	categories := make([]models.ProductCategory, 0, len(raw))
	for _, cat := range raw {
		var items []models.ProductItem
		total := 0
		for _, p := range cat.Products {
			items = append(items, models.ProductItem{Name: p.Name, Qty: p.Qty, Price: 0})
			total += p.Qty
		}
		if len(items) == 0 {
			continue
		}
		categories = append(categories, models.ProductCategory{
			Name:     cat.DisplayName(),
			ImageURL: cat.Image(),
			TotalQty: total,
			Items:    items,
		})
	}

	return &models.StoreProducts{Store: store, Categories: categories}
}
