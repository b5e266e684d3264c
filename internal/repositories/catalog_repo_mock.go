package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// MockCatalogRepository is an in-memory implementation of CatalogRepository.
type MockCatalogRepository struct {
	mu           sync.RWMutex
	products     map[uint]models.Product
	categories   map[uint]models.Category
	banners      map[uint]models.HeroBanner
	testimonials map[uint]models.Testimonial
	reviews      map[uint]models.Review
	nextID       uint

	// FailWith, when set, makes every call return that error.
	FailWith error
}

// NewMockCatalogRepository creates a new instance of MockCatalogRepository.
func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{
		products:     make(map[uint]models.Product),
		categories:   make(map[uint]models.Category),
		banners:      make(map[uint]models.HeroBanner),
		testimonials: make(map[uint]models.Testimonial),
		reviews:      make(map[uint]models.Review),
		nextID:       1,
	}
}

func (r *MockCatalogRepository) mint() uint {
	id := r.nextID
	r.nextID++
	return id
}

// Products returns all products ordered by ID.
func (r *MockCatalogRepository) Products(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ProductByID returns a product by its ID.
func (r *MockCatalogRepository) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return &p, nil
}

// SaveProduct creates or updates a product.
func (r *MockCatalogRepository) SaveProduct(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if product.ID == 0 {
		product.ID = r.mint()
		product.CreatedAt = time.Now()
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// DeleteProduct removes a product by its ID.
func (r *MockCatalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	delete(r.products, id)
	return nil
}

// Categories returns all categories ordered by ID.
func (r *MockCatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CategoryByID returns a category by its ID.
func (r *MockCatalogRepository) CategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	c, ok := r.categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	return &c, nil
}

// SaveCategory creates or updates a category.
func (r *MockCatalogRepository) SaveCategory(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if category.ID == 0 {
		category.ID = r.mint()
		category.CreatedAt = time.Now()
	}
	category.UpdatedAt = time.Now()
	r.categories[category.ID] = *category
	return nil
}

// DeleteCategory removes a category by its ID.
func (r *MockCatalogRepository) DeleteCategory(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.categories[id]; !ok {
		return fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	delete(r.categories, id)
	return nil
}

// HeroBanners returns all hero banners ordered by ID.
func (r *MockCatalogRepository) HeroBanners(ctx context.Context) ([]models.HeroBanner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]models.HeroBanner, 0, len(r.banners))
	for _, b := range r.banners {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveHeroBanner creates or updates a hero banner.
func (r *MockCatalogRepository) SaveHeroBanner(ctx context.Context, banner *models.HeroBanner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if banner.ID == 0 {
		banner.ID = r.mint()
	}
	r.banners[banner.ID] = *banner
	return nil
}

// Testimonials returns all testimonials ordered by ID.
func (r *MockCatalogRepository) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]models.Testimonial, 0, len(r.testimonials))
	for _, t := range r.testimonials {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveTestimonial creates or updates a testimonial.
func (r *MockCatalogRepository) SaveTestimonial(ctx context.Context, testimonial *models.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if testimonial.ID == 0 {
		testimonial.ID = r.mint()
	}
	r.testimonials[testimonial.ID] = *testimonial
	return nil
}

// ReviewsByProduct returns the reviews for one product ordered by ID.
func (r *MockCatalogRepository) ReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]models.Review, 0)
	for _, rev := range r.reviews {
		if rev.ProductID == productID {
			out = append(out, rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateReview adds a review.
func (r *MockCatalogRepository) CreateReview(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if review.ID == 0 {
		review.ID = r.mint()
		review.CreatedAt = time.Now()
	}
	r.reviews[review.ID] = *review
	return nil
}
