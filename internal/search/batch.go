package search

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

// CategoryLoader decorates the first few stores of a result set with live
// category data. The window and the per-store stagger are self-imposed
// backpressure against upstream rate limits, not correctness: any single
// store's failure is absorbed and replaced with the chain's defaults.
type CategoryLoader struct {
	products *ProductService
	limit    int
	stagger  time.Duration
}

func NewCategoryLoader(products *ProductService, limit int, stagger time.Duration) *CategoryLoader {
	return &CategoryLoader{products: products, limit: limit, stagger: stagger}
}

// Load fills Categories on up to limit stores, in place on the returned
// copy. Stores already enriched are left alone. Wait-for-all join: a slow
// or failing store never blocks the others' data from being used.
func (l *CategoryLoader) Load(ctx context.Context, stores []models.UnifiedStore) []models.UnifiedStore {
	out := make([]models.UnifiedStore, len(stores))
	copy(out, stores)

	window := len(out)
	if window > l.limit {
		window = l.limit
	}

	var g errgroup.Group
	for i := 0; i < window; i++ {
		i := i
		if len(out[i].Categories) > 0 {
			continue
		}
		delay := time.Duration(i) * l.stagger
		g.Go(func() error {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}

			products := l.products.StoreProducts(ctx, out[i])
			if products == nil || len(products.Categories) == 0 {
				out[i].Categories = DefaultCategories(out[i].Type)
				return nil
			}
			out[i].Categories = stockFromCategories(products.Categories)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func stockFromCategories(cats []models.ProductCategory) []models.StoreCategory {
	out := make([]models.StoreCategory, 0, len(cats))
	for _, c := range cats {
		out = append(out, models.StoreCategory{
			CategoryName: c.Name,
			Qty:          c.TotalQty,
			ImageURL:     c.ImageURL,
		})
	}
	return out
}

// DefaultCategories is the placeholder grid shown when live data for a
// store could not be loaded.
func DefaultCategories(t models.StoreType) []models.StoreCategory {
	names := []string{"Rice Balls & Sushi", "Bento", "Sandwiches", "Bread", "Desserts"}
	if t == models.StoreTypeFamilyMart {
		names = []string{"Fresh Food", "Bento", "Sandwiches", "Bread", "Desserts"}
	}
	out := make([]models.StoreCategory, 0, len(names))
	for _, n := range names {
		out = append(out, models.StoreCategory{CategoryName: n, Qty: 0})
	}
	return out
}
