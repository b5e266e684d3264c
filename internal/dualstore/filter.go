package dualstore

import (
	"strings"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// ProductFilter narrows a product listing. Filtering always runs in-process
// on the union returned by whichever store answered, so both stores see the
// same semantics.
type ProductFilter struct {
	// Search matches name or description, case-insensitively.
	Search string
	// CategoryID restricts to one category.
	CategoryID *uint
	// MinPrice and MaxPrice are inclusive bounds on the effective price.
	MinPrice *float64
	MaxPrice *float64
	// SaleOnly keeps only products with an effective discount.
	SaleOnly bool
}

// Apply returns the products matching the filter, preserving order.
func (f ProductFilter) Apply(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if f.Match(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

// Match reports whether a single product passes the filter.
func (f ProductFilter) Match(p *models.Product) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	price := p.EffectivePrice()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	if f.SaleOnly && !p.OnSale() {
		return false
	}
	return true
}
