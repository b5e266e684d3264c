package services

import (
	"context"

	"github.com/arhammunir1104/ecom-sub001/internal/identity"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
)

// WishlistService handles wishlists and carts. Both degrade gracefully for
// guests: reads return empty, writes are accepted as no-ops. Guest browsing
// must never error out of these paths.
type WishlistService struct {
	orders repositories.OrderRepository
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(orders repositories.OrderRepository) *WishlistService {
	return &WishlistService{orders: orders}
}

// Wishlist returns the actor's wishlist, empty for guests.
func (s *WishlistService) Wishlist(ctx context.Context, actor identity.Actor) ([]models.WishlistItem, error) {
	if !actor.Authenticated() {
		return []models.WishlistItem{}, nil
	}
	return s.orders.Wishlist(ctx, actor.User.ID)
}

// AddToWishlist saves a product for the actor; a no-op for guests.
func (s *WishlistService) AddToWishlist(ctx context.Context, actor identity.Actor, productID uint) error {
	if !actor.Authenticated() {
		return nil
	}
	return s.orders.AddWishlistItem(ctx, &models.WishlistItem{
		UserID:    actor.User.ID,
		ProductID: productID,
	})
}

// RemoveFromWishlist removes a product; a no-op for guests.
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, actor identity.Actor, productID uint) error {
	if !actor.Authenticated() {
		return nil
	}
	return s.orders.RemoveWishlistItem(ctx, actor.User.ID, productID)
}

// Cart returns the actor's cart, empty for guests. Guest carts live
// client-side; the server only persists carts for canonical users.
func (s *WishlistService) Cart(ctx context.Context, actor identity.Actor) ([]models.CartItem, error) {
	if !actor.Authenticated() {
		return []models.CartItem{}, nil
	}
	return s.orders.Cart(ctx, actor.User.ID)
}

// SetCartItem sets the quantity of a product in the cart; a no-op for
// guests.
func (s *WishlistService) SetCartItem(ctx context.Context, actor identity.Actor, productID uint, quantity int) error {
	if !actor.Authenticated() {
		return nil
	}
	if quantity <= 0 {
		return s.orders.RemoveCartItem(ctx, actor.User.ID, productID)
	}
	return s.orders.UpsertCartItem(ctx, &models.CartItem{
		UserID:    actor.User.ID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

// RemoveCartItem removes a product from the cart; a no-op for guests.
func (s *WishlistService) RemoveCartItem(ctx context.Context, actor identity.Actor, productID uint) error {
	if !actor.Authenticated() {
		return nil
	}
	return s.orders.RemoveCartItem(ctx, actor.User.ID, productID)
}
