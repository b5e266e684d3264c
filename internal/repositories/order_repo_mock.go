package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	mu       sync.RWMutex
	orders   map[uint]models.Order
	wishlist map[uint][]models.WishlistItem
	carts    map[uint][]models.CartItem
	nextID   uint

	// FailWith, when set, makes every call return that error.
	FailWith error
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[uint]models.Order),
		wishlist: make(map[uint][]models.WishlistItem),
		carts:    make(map[uint][]models.CartItem),
		nextID:   1,
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if order.ID == 0 {
		order.ID = r.nextID
		r.nextID++
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return &order, nil
}

// All returns every order ordered by ID.
func (r *MockOrderRepository) All(ctx context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ByUser returns the orders owned by one user.
func (r *MockOrderRepository) ByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// Wishlist returns the wishlist of one user.
func (r *MockOrderRepository) Wishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	return append([]models.WishlistItem{}, r.wishlist[userID]...), nil
}

// AddWishlistItem saves a product to a user's wishlist, idempotently.
func (r *MockOrderRepository) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	for _, it := range r.wishlist[item.UserID] {
		if it.ProductID == item.ProductID {
			return nil
		}
	}
	item.CreatedAt = time.Now()
	r.wishlist[item.UserID] = append(r.wishlist[item.UserID], *item)
	return nil
}

// RemoveWishlistItem removes a product from a user's wishlist.
func (r *MockOrderRepository) RemoveWishlistItem(ctx context.Context, userID, productID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	items := r.wishlist[userID]
	for i, it := range items {
		if it.ProductID == productID {
			r.wishlist[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

// Cart returns the cart of one user.
func (r *MockOrderRepository) Cart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	return append([]models.CartItem{}, r.carts[userID]...), nil
}

// UpsertCartItem sets the quantity of a product in a user's cart.
func (r *MockOrderRepository) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	items := r.carts[item.UserID]
	for i, it := range items {
		if it.ProductID == item.ProductID {
			items[i].Quantity = item.Quantity
			items[i].UpdatedAt = time.Now()
			return nil
		}
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	r.carts[item.UserID] = append(items, *item)
	return nil
}

// RemoveCartItem removes a product from a user's cart.
func (r *MockOrderRepository) RemoveCartItem(ctx context.Context, userID, productID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	items := r.carts[userID]
	for i, it := range items {
		if it.ProductID == productID {
			r.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

// ClearCart empties a user's cart.
func (r *MockOrderRepository) ClearCart(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	delete(r.carts, userID)
	return nil
}
