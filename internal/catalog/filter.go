package catalog

import (
	"strings"

	"github.com/bjo163/warungpos/internal/domain"
)

// AllCategories selects every category in Filter.
const AllCategories int64 = 0

// Filter produces the visible product subset for the storefront grid:
// in-stock products matching the selected category and the free-text search
// (case-insensitive substring against name and description). Zero-stock
// products are always hidden regardless of filters.
func Filter(products []domain.Product, categoryID int64, search string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Stock <= 0 {
			continue
		}
		if categoryID != AllCategories && p.CategoryID != categoryID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}
