package repositories

import "context"

// Document store collection names. The document-store copy of every entity
// lives in the collection matching its relational table.
const (
	ColUsers        = "users"
	ColProducts     = "products"
	ColCategories   = "categories"
	ColOrders       = "orders"
	ColReviews      = "reviews"
	ColHeroBanners  = "heroBanners"
	ColTestimonials = "testimonials"
)

// Document is one document-store record: a string key plus its fields.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// DocumentStore is the document-side persistence contract. Set has merge
// semantics: it creates the document when absent and patches only the given
// fields when present, which avoids the "document not found" failure class
// that a field-level update carries.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (map[string]interface{}, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error)
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
}
