package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts an order and its items in one transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return mapGormErr("create order", r.db.WithContext(ctx).Create(order).Error)
}

// GetByID returns an order with its items preloaded.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, mapGormErr(fmt.Sprintf("get order %d", id), err)
	}
	return &order, nil
}

// All returns every order, newest first.
func (r *GORMOrderRepository) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at desc").Find(&orders).Error
	if err != nil {
		return nil, mapGormErr("list orders", err)
	}
	return orders, nil
}

// ByUser returns one user's orders, newest first.
func (r *GORMOrderRepository) ByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, mapGormErr("list orders by user", err)
	}
	return orders, nil
}

// UpdateStatus sets the fulfilment status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return mapGormErr("update order status", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return nil
}

// Wishlist returns a user's wishlist items.
func (r *GORMOrderRepository) Wishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, mapGormErr("list wishlist", err)
	}
	return items, nil
}

// AddWishlistItem inserts a wishlist entry. Adding an already-saved product
// is idempotent.
func (r *GORMOrderRepository) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	err := mapGormErr("add wishlist item", r.db.WithContext(ctx).Create(item).Error)
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}

// RemoveWishlistItem deletes a wishlist entry. Removing an absent entry is
// not an error.
func (r *GORMOrderRepository) RemoveWishlistItem(ctx context.Context, userID, productID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	return mapGormErr("remove wishlist item", res.Error)
}

// Cart returns a user's cart items.
func (r *GORMOrderRepository) Cart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, mapGormErr("list cart", err)
	}
	return items, nil
}

// UpsertCartItem sets the quantity for a product in the cart, inserting the
// row when absent.
func (r *GORMOrderRepository) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	var existing models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Quantity = item.Quantity
		*item = existing
		return mapGormErr("update cart item", r.db.WithContext(ctx).Save(&existing).Error)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return mapGormErr("create cart item", r.db.WithContext(ctx).Create(item).Error)
	default:
		return mapGormErr("upsert cart item", err)
	}
}

// RemoveCartItem deletes one product from the cart.
func (r *GORMOrderRepository) RemoveCartItem(ctx context.Context, userID, productID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	return mapGormErr("remove cart item", res.Error)
}

// ClearCart removes every item from a user's cart. Checkout calls this after
// a successful order.
func (r *GORMOrderRepository) ClearCart(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return mapGormErr("clear cart", res.Error)
}
