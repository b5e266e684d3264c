package models

import "time"

// WishlistItem marks a product saved by a user. Wishlists are per-user;
// guests have none and wishlist operations degrade to no-ops for them.
type WishlistItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index:idx_wishlist_user_product,unique"`
	ProductID uint      `json:"product_id" gorm:"index:idx_wishlist_user_product,unique" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is a product plus quantity in a user's cart.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index:idx_cart_user_product,unique"`
	ProductID uint      `json:"product_id" gorm:"index:idx_cart_user_product,unique" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
