package repositories

import (
	"context"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// OrderRepository defines relational-store access to orders, wishlists, and
// carts. The relational store is the store of record for all three.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	ByUser(ctx context.Context, userID uint) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) error

	Wishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, item *models.WishlistItem) error
	RemoveWishlistItem(ctx context.Context, userID, productID uint) error

	Cart(ctx context.Context, userID uint) ([]models.CartItem, error)
	UpsertCartItem(ctx context.Context, item *models.CartItem) error
	RemoveCartItem(ctx context.Context, userID, productID uint) error
	ClearCart(ctx context.Context, userID uint) error
}
