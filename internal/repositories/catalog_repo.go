package repositories

import (
	"context"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// CatalogRepository defines relational-store access to catalog content:
// products, categories, storefront content, and product reviews.
type CatalogRepository interface {
	Products(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id uint) (*models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error

	Categories(ctx context.Context) ([]models.Category, error)
	CategoryByID(ctx context.Context, id uint) (*models.Category, error)
	SaveCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error

	HeroBanners(ctx context.Context) ([]models.HeroBanner, error)
	SaveHeroBanner(ctx context.Context, banner *models.HeroBanner) error

	Testimonials(ctx context.Context) ([]models.Testimonial, error)
	SaveTestimonial(ctx context.Context, testimonial *models.Testimonial) error

	ReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) error
}
