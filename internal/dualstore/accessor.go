// Package dualstore mediates every entity read and write that can be
// answered by either the document store or the relational store. Reads try
// the document store first and fall back to the relational store; writes go
// to whichever store is of record for the entity first, with a best-effort
// mirror to the other. A store error is never surfaced to the caller while a
// fallback remains.
package dualstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
)

// DefaultStoreTimeout bounds a single store call so one stalled backend
// degrades into the fallback path instead of stalling the request.
const DefaultStoreTimeout = 3 * time.Second

// Accessor is the dual-store read/write adapter.
type Accessor struct {
	catalog repositories.CatalogRepository
	orders  repositories.OrderRepository
	docs    repositories.DocumentStore
	timeout time.Duration
}

// NewAccessor creates an Accessor. A zero timeout selects
// DefaultStoreTimeout.
func NewAccessor(catalog repositories.CatalogRepository, orders repositories.OrderRepository, docs repositories.DocumentStore, timeout time.Duration) *Accessor {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Accessor{catalog: catalog, orders: orders, docs: docs, timeout: timeout}
}

func (a *Accessor) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.timeout)
}

// docGet runs a bounded document-store Get.
func (a *Accessor) docGet(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	bctx, cancel := a.bound(ctx)
	defer cancel()
	return a.docs.Get(bctx, collection, id)
}

// docList runs a bounded document-store List.
func (a *Accessor) docList(ctx context.Context, collection string) ([]repositories.Document, error) {
	bctx, cancel := a.bound(ctx)
	defer cancel()
	return a.docs.List(bctx, collection)
}

// mirror performs a best-effort document write. Failures are logged, never
// raised.
func (a *Accessor) mirror(ctx context.Context, collection, id string, data map[string]interface{}) {
	bctx, cancel := a.bound(ctx)
	defer cancel()
	if err := a.docs.Set(bctx, collection, id, data); err != nil {
		log.Printf("dualstore: mirror to %s/%s failed: %v", collection, id, err)
	}
}

// Product resolves one product by its string key. A non-numeric key is a
// MalformedKey client error, not a silent miss.
func (a *Accessor) Product(ctx context.Context, key string) (*models.Product, error) {
	id, err := models.ParseNumericID(key)
	if err != nil {
		return nil, err
	}
	if data, derr := a.docGet(ctx, repositories.ColProducts, key); derr == nil {
		if p, perr := models.ProductFromDocument(key, data); perr == nil {
			return p, nil
		}
	}
	return a.catalog.ProductByID(ctx, id)
}

// Products lists products, applying the filter in-process to whichever
// store answered.
func (a *Accessor) Products(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	docs, err := a.docList(ctx, repositories.ColProducts)
	if err == nil && len(docs) > 0 {
		products := make([]models.Product, 0, len(docs))
		for _, d := range docs {
			p, perr := models.ProductFromDocument(d.ID, d.Data)
			if perr != nil {
				log.Printf("dualstore: skipping malformed product document %q: %v", d.ID, perr)
				continue
			}
			products = append(products, *p)
		}
		return filter.Apply(products), nil
	}
	if err != nil {
		log.Printf("dualstore: document product list failed, falling back: %v", err)
	}
	products, rerr := a.catalog.Products(ctx)
	if rerr != nil {
		return nil, rerr
	}
	return filter.Apply(products), nil
}

// SaveProduct writes a product. The document store is of record for catalog
// content: updates go there first with a relational fallback, and a create
// first visits the relational store because only it can mint the numeric ID
// that both stores must then share.
func (a *Accessor) SaveProduct(ctx context.Context, product *models.Product) error {
	if product.ID == 0 {
		if err := a.catalog.SaveProduct(ctx, product); err != nil {
			return err
		}
		a.mirror(ctx, repositories.ColProducts, models.FormatID(product.ID), product.ToDocument())
		return nil
	}
	key := models.FormatID(product.ID)
	bctx, cancel := a.bound(ctx)
	docErr := a.docs.Set(bctx, repositories.ColProducts, key, product.ToDocument())
	cancel()
	if docErr != nil {
		log.Printf("dualstore: document product write failed, falling back: %v", docErr)
		return a.catalog.SaveProduct(ctx, product)
	}
	if err := a.catalog.SaveProduct(ctx, product); err != nil {
		log.Printf("dualstore: relational mirror of product %d failed: %v", product.ID, err)
	}
	return nil
}

// DeleteProduct removes a product from both stores. It fails only when both
// removals fail.
func (a *Accessor) DeleteProduct(ctx context.Context, key string) error {
	id, err := models.ParseNumericID(key)
	if err != nil {
		return err
	}
	bctx, cancel := a.bound(ctx)
	docErr := a.docs.Delete(bctx, repositories.ColProducts, key)
	cancel()
	relErr := a.catalog.DeleteProduct(ctx, id)
	if docErr != nil && relErr != nil {
		return fmt.Errorf("delete product %s: document: %v; relational: %w", key, docErr, relErr)
	}
	if docErr != nil {
		log.Printf("dualstore: document delete of product %s failed: %v", key, docErr)
	}
	if relErr != nil && !errors.Is(relErr, repositories.ErrNotFound) {
		log.Printf("dualstore: relational delete of product %s failed: %v", key, relErr)
	}
	return nil
}

// Category resolves one category by its string key.
func (a *Accessor) Category(ctx context.Context, key string) (*models.Category, error) {
	id, err := models.ParseNumericID(key)
	if err != nil {
		return nil, err
	}
	if data, derr := a.docGet(ctx, repositories.ColCategories, key); derr == nil {
		if c, cerr := models.CategoryFromDocument(key, data); cerr == nil {
			return c, nil
		}
	}
	return a.catalog.CategoryByID(ctx, id)
}

// Categories lists categories.
func (a *Accessor) Categories(ctx context.Context) ([]models.Category, error) {
	docs, err := a.docList(ctx, repositories.ColCategories)
	if err == nil && len(docs) > 0 {
		categories := make([]models.Category, 0, len(docs))
		for _, d := range docs {
			c, cerr := models.CategoryFromDocument(d.ID, d.Data)
			if cerr != nil {
				log.Printf("dualstore: skipping malformed category document %q: %v", d.ID, cerr)
				continue
			}
			categories = append(categories, *c)
		}
		return categories, nil
	}
	if err != nil {
		log.Printf("dualstore: document category list failed, falling back: %v", err)
	}
	return a.catalog.Categories(ctx)
}

// SaveCategory writes a category under the same policy as SaveProduct.
func (a *Accessor) SaveCategory(ctx context.Context, category *models.Category) error {
	if category.ID == 0 {
		if err := a.catalog.SaveCategory(ctx, category); err != nil {
			return err
		}
		a.mirror(ctx, repositories.ColCategories, models.FormatID(category.ID), category.ToDocument())
		return nil
	}
	key := models.FormatID(category.ID)
	bctx, cancel := a.bound(ctx)
	docErr := a.docs.Set(bctx, repositories.ColCategories, key, category.ToDocument())
	cancel()
	if docErr != nil {
		log.Printf("dualstore: document category write failed, falling back: %v", docErr)
		return a.catalog.SaveCategory(ctx, category)
	}
	if err := a.catalog.SaveCategory(ctx, category); err != nil {
		log.Printf("dualstore: relational mirror of category %d failed: %v", category.ID, err)
	}
	return nil
}

// DeleteCategory removes a category from both stores.
func (a *Accessor) DeleteCategory(ctx context.Context, key string) error {
	id, err := models.ParseNumericID(key)
	if err != nil {
		return err
	}
	bctx, cancel := a.bound(ctx)
	docErr := a.docs.Delete(bctx, repositories.ColCategories, key)
	cancel()
	relErr := a.catalog.DeleteCategory(ctx, id)
	if docErr != nil && relErr != nil {
		return fmt.Errorf("delete category %s: document: %v; relational: %w", key, docErr, relErr)
	}
	return nil
}

// HeroBanners lists hero banners.
func (a *Accessor) HeroBanners(ctx context.Context) ([]models.HeroBanner, error) {
	docs, err := a.docList(ctx, repositories.ColHeroBanners)
	if err == nil && len(docs) > 0 {
		banners := make([]models.HeroBanner, 0, len(docs))
		for _, d := range docs {
			b, berr := models.HeroBannerFromDocument(d.ID, d.Data)
			if berr != nil {
				continue
			}
			banners = append(banners, *b)
		}
		return banners, nil
	}
	if err != nil {
		log.Printf("dualstore: document banner list failed, falling back: %v", err)
	}
	return a.catalog.HeroBanners(ctx)
}

// Testimonials lists testimonials.
func (a *Accessor) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	docs, err := a.docList(ctx, repositories.ColTestimonials)
	if err == nil && len(docs) > 0 {
		testimonials := make([]models.Testimonial, 0, len(docs))
		for _, d := range docs {
			t, terr := models.TestimonialFromDocument(d.ID, d.Data)
			if terr != nil {
				continue
			}
			testimonials = append(testimonials, *t)
		}
		return testimonials, nil
	}
	if err != nil {
		log.Printf("dualstore: document testimonial list failed, falling back: %v", err)
	}
	return a.catalog.Testimonials(ctx)
}

// CreateReview writes a review. Reviews are relational-of-record: the
// relational write must succeed, the document copy is a best-effort mirror.
func (a *Accessor) CreateReview(ctx context.Context, review *models.Review) error {
	if err := a.catalog.CreateReview(ctx, review); err != nil {
		return err
	}
	a.mirror(ctx, repositories.ColReviews, models.FormatID(review.ID), review.ToDocument())
	return nil
}

// ReviewsByProduct lists the reviews for one product.
func (a *Accessor) ReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	return a.catalog.ReviewsByProduct(ctx, productID)
}

// CreateOrder writes an order. Orders are relational-of-record, so the
// relational write is issued first; the document mirror only happens for a
// write the store of record accepted.
func (a *Accessor) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := a.orders.Create(ctx, order); err != nil {
		return err
	}
	a.mirror(ctx, repositories.ColOrders, models.FormatID(order.ID), order.ToDocument())
	return nil
}

// Order resolves one order by its string key.
func (a *Accessor) Order(ctx context.Context, key string) (*models.Order, error) {
	id, err := models.ParseNumericID(key)
	if err != nil {
		return nil, err
	}
	order, rerr := a.orders.GetByID(ctx, id)
	if rerr == nil {
		return order, nil
	}
	if errors.Is(rerr, repositories.ErrNotFound) || errors.Is(rerr, repositories.ErrStoreUnavailable) {
		if data, derr := a.docGet(ctx, repositories.ColOrders, key); derr == nil {
			if o, oerr := models.OrderFromDocument(key, data); oerr == nil {
				return o, nil
			}
		}
	}
	return nil, rerr
}

// UpdateOrderStatus sets the fulfilment status in the store of record and
// mirrors it.
func (a *Accessor) UpdateOrderStatus(ctx context.Context, key, status string) error {
	id, err := models.ParseNumericID(key)
	if err != nil {
		return err
	}
	if err := a.orders.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	a.mirror(ctx, repositories.ColOrders, key, map[string]interface{}{"status": status})
	return nil
}
