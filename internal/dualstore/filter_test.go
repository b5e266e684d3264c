package dualstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arhammunir1104/ecom-sub001/internal/dualstore"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

func ptr[T any](v T) *T { return &v }

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Espresso Machine", Description: "Pulls a perfect shot", Price: 250, CategoryID: 1},
		{ID: 2, Name: "French Press", Description: "Slow coffee", Price: 30, DiscountPrice: 24, CategoryID: 1},
		{ID: 3, Name: "Running Shoes", Description: "Lightweight trainers", Price: 90, CategoryID: 2},
		{ID: 4, Name: "Trail Shoes", Description: "Grip for mud", Price: 120, DiscountPrice: 150, CategoryID: 2},
	}
}

func TestFilterSearchMatchesNameAndDescription(t *testing.T) {
	got := dualstore.ProductFilter{Search: "shoes"}.Apply(sampleProducts())
	assert.Len(t, got, 2)

	got = dualstore.ProductFilter{Search: "COFFEE"}.Apply(sampleProducts())
	assert.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
}

func TestFilterCategory(t *testing.T) {
	got := dualstore.ProductFilter{CategoryID: ptr(uint(1))}.Apply(sampleProducts())
	assert.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, uint(1), p.CategoryID)
	}
}

func TestFilterPriceBoundsUseEffectivePrice(t *testing.T) {
	// The French Press lists at 30 but sells at 24: an inclusive max of 24
	// keeps it, a min of 25 drops it.
	got := dualstore.ProductFilter{MaxPrice: ptr(24.0)}.Apply(sampleProducts())
	assert.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)

	got = dualstore.ProductFilter{MinPrice: ptr(25.0), MaxPrice: ptr(100.0)}.Apply(sampleProducts())
	assert.Len(t, got, 1)
	assert.Equal(t, uint(3), got[0].ID)
}

func TestFilterSaleOnly(t *testing.T) {
	// A "discount" at or above the list price is not a sale.
	got := dualstore.ProductFilter{SaleOnly: true}.Apply(sampleProducts())
	assert.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
}

func TestFilterCombinesCriteria(t *testing.T) {
	got := dualstore.ProductFilter{
		Search:     "shoes",
		CategoryID: ptr(uint(2)),
		MaxPrice:   ptr(100.0),
	}.Apply(sampleProducts())
	assert.Len(t, got, 1)
	assert.Equal(t, uint(3), got[0].ID)
}

func TestEmptyFilterKeepsEverything(t *testing.T) {
	got := dualstore.ProductFilter{}.Apply(sampleProducts())
	assert.Len(t, got, 4)
}

func TestOnSaleSemantics(t *testing.T) {
	assert.False(t, (&models.Product{Price: 100}).OnSale())
	assert.False(t, (&models.Product{Price: 100, DiscountPrice: 100}).OnSale())
	assert.False(t, (&models.Product{Price: 100, DiscountPrice: 120}).OnSale())
	assert.True(t, (&models.Product{Price: 100, DiscountPrice: 99}).OnSale())

	assert.Equal(t, 99.0, (&models.Product{Price: 100, DiscountPrice: 99}).EffectivePrice())
	assert.Equal(t, 100.0, (&models.Product{Price: 100, DiscountPrice: 120}).EffectivePrice())
}
