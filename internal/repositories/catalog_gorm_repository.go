package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{db: db}
}

// Products returns all products.
func (r *GORMCatalogRepository) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, mapGormErr("list products", err)
	}
	return products, nil
}

// ProductByID returns a product by numeric primary key.
func (r *GORMCatalogRepository) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, mapGormErr(fmt.Sprintf("get product %d", id), err)
	}
	return &product, nil
}

// SaveProduct creates the product when it has no ID yet and updates it
// otherwise.
func (r *GORMCatalogRepository) SaveProduct(ctx context.Context, product *models.Product) error {
	return mapGormErr("save product", r.db.WithContext(ctx).Save(product).Error)
}

// DeleteProduct soft-deletes a product.
func (r *GORMCatalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return mapGormErr("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return nil
}

// Categories returns all categories.
func (r *GORMCatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, mapGormErr("list categories", err)
	}
	return categories, nil
}

// CategoryByID returns a category by numeric primary key.
func (r *GORMCatalogRepository) CategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, mapGormErr(fmt.Sprintf("get category %d", id), err)
	}
	return &category, nil
}

// SaveCategory creates or updates a category.
func (r *GORMCatalogRepository) SaveCategory(ctx context.Context, category *models.Category) error {
	return mapGormErr("save category", r.db.WithContext(ctx).Save(category).Error)
}

// DeleteCategory soft-deletes a category.
func (r *GORMCatalogRepository) DeleteCategory(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return mapGormErr("delete category", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	return nil
}

// HeroBanners returns all hero banners.
func (r *GORMCatalogRepository) HeroBanners(ctx context.Context) ([]models.HeroBanner, error) {
	var banners []models.HeroBanner
	if err := r.db.WithContext(ctx).Find(&banners).Error; err != nil {
		return nil, mapGormErr("list hero banners", err)
	}
	return banners, nil
}

// SaveHeroBanner creates or updates a hero banner.
func (r *GORMCatalogRepository) SaveHeroBanner(ctx context.Context, banner *models.HeroBanner) error {
	return mapGormErr("save hero banner", r.db.WithContext(ctx).Save(banner).Error)
}

// Testimonials returns all testimonials.
func (r *GORMCatalogRepository) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	var testimonials []models.Testimonial
	if err := r.db.WithContext(ctx).Find(&testimonials).Error; err != nil {
		return nil, mapGormErr("list testimonials", err)
	}
	return testimonials, nil
}

// SaveTestimonial creates or updates a testimonial.
func (r *GORMCatalogRepository) SaveTestimonial(ctx context.Context, testimonial *models.Testimonial) error {
	return mapGormErr("save testimonial", r.db.WithContext(ctx).Save(testimonial).Error)
}

// ReviewsByProduct returns the reviews for one product, newest first.
func (r *GORMCatalogRepository) ReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return nil, mapGormErr("list reviews", err)
	}
	return reviews, nil
}

// CreateReview inserts a review.
func (r *GORMCatalogRepository) CreateReview(ctx context.Context, review *models.Review) error {
	return mapGormErr("create review", r.db.WithContext(ctx).Create(review).Error)
}
