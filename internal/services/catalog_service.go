package services

import (
	"context"

	"github.com/arhammunir1104/ecom-sub001/internal/dualstore"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// CatalogService handles business logic for catalog browsing and admin
// catalog mutation. All reads and writes go through the dual-store accessor.
type CatalogService struct {
	accessor *dualstore.Accessor
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(accessor *dualstore.Accessor) *CatalogService {
	return &CatalogService{accessor: accessor}
}

// ListProducts retrieves products matching the filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter dualstore.ProductFilter) ([]models.Product, error) {
	return s.accessor.Products(ctx, filter)
}

// GetProduct retrieves a single product by its string key.
func (s *CatalogService) GetProduct(ctx context.Context, key string) (*models.Product, error) {
	return s.accessor.Product(ctx, key)
}

// SaveProduct creates or updates a product.
func (s *CatalogService) SaveProduct(ctx context.Context, product *models.Product) error {
	return s.accessor.SaveProduct(ctx, product)
}

// DeleteProduct removes a product from both stores.
func (s *CatalogService) DeleteProduct(ctx context.Context, key string) error {
	return s.accessor.DeleteProduct(ctx, key)
}

// ListCategories retrieves all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.accessor.Categories(ctx)
}

// GetCategory retrieves a single category.
func (s *CatalogService) GetCategory(ctx context.Context, key string) (*models.Category, error) {
	return s.accessor.Category(ctx, key)
}

// SaveCategory creates or updates a category.
func (s *CatalogService) SaveCategory(ctx context.Context, category *models.Category) error {
	return s.accessor.SaveCategory(ctx, category)
}

// DeleteCategory removes a category from both stores.
func (s *CatalogService) DeleteCategory(ctx context.Context, key string) error {
	return s.accessor.DeleteCategory(ctx, key)
}

// HeroBanners retrieves the storefront hero banners.
func (s *CatalogService) HeroBanners(ctx context.Context) ([]models.HeroBanner, error) {
	return s.accessor.HeroBanners(ctx)
}

// Testimonials retrieves the storefront testimonials.
func (s *CatalogService) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	return s.accessor.Testimonials(ctx)
}

// AddReview records a review by an authenticated user on a product.
func (s *CatalogService) AddReview(ctx context.Context, review *models.Review) error {
	// The product must resolve before a review attaches to it.
	if _, err := s.accessor.Product(ctx, models.FormatID(review.ProductID)); err != nil {
		return err
	}
	return s.accessor.CreateReview(ctx, review)
}

// Reviews lists the reviews for one product.
func (s *CatalogService) Reviews(ctx context.Context, productKey string) ([]models.Review, error) {
	id, err := models.ParseNumericID(productKey)
	if err != nil {
		return nil, err
	}
	return s.accessor.ReviewsByProduct(ctx, id)
}
