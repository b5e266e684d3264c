package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/arhammunir1104/ecom-sub001/internal/middleware"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/rolesync"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

// UserHandler handles HTTP requests for profiles, role administration,
// wishlists, and carts.
type UserHandler struct {
	userService     *services.UserService
	wishlistService *services.WishlistService
	validate        *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, wishlistService *services.WishlistService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		wishlistService: wishlistService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the user routes. Wishlist and cart reads/writes
// are open: for guests they answer empty rather than failing.
func (h *UserHandler) RegisterRoutes(router fiber.Router, requireAuth, requireAdmin fiber.Handler) {
	users := router.Group("/users")
	users.Get("/me", requireAuth, h.HandleGetProfile)
	users.Put("/me", requireAuth, h.HandleUpdateProfile)
	users.Post("/role", requireAdmin, h.HandleChangeRole)

	wishlist := router.Group("/wishlist")
	wishlist.Get("/", h.HandleGetWishlist)
	wishlist.Post("/", h.HandleAddWishlistItem)
	wishlist.Delete("/:productId", h.HandleRemoveWishlistItem)

	cart := router.Group("/cart")
	cart.Get("/", h.HandleGetCart)
	cart.Post("/", h.HandleSetCartItem)
	cart.Delete("/:productId", h.HandleRemoveCartItem)
}

// HandleGetProfile returns the canonical record of the acting identity.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	return c.JSON(middleware.Actor(c).User)
}

// ProfileRequest is the request body for profile edits.
type ProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=100"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url"`
}

// HandleUpdateProfile edits the acting identity's display fields.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}

	user := middleware.Actor(c).User
	if err := h.userService.UpdateProfile(c.UserContext(), user, req.Username, req.PhotoURL); err != nil {
		log.Printf("Error updating profile: %v", err)
		return fail(c, err, "Could not update profile")
	}
	return c.JSON(user)
}

// RoleRequest names a target identity and the new role. Any one of the
// identity fields is enough.
type RoleRequest struct {
	UserID  uint   `json:"user_id"`
	AuthUID string `json:"auth_uid"`
	Email   string `json:"email" validate:"omitempty,email"`
	Role    string `json:"role" validate:"required,oneof=user admin"`
}

// HandleChangeRole mirrors a role change into both stores and returns the
// structured per-store outcome, partial failures included.
func (h *UserHandler) HandleChangeRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}
	if req.UserID == 0 && req.AuthUID == "" && req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A target identity (user_id, auth_uid, or email) is required",
		})
	}

	target := rolesync.Target{ID: req.UserID, AuthUID: req.AuthUID, Email: req.Email}
	result, err := h.userService.ChangeRole(c.UserContext(), target, models.Role(req.Role))
	if err != nil {
		return fail(c, err, "Could not change role")
	}
	status := fiber.StatusOK
	if !result.Overall {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}

// WishlistRequest is the request body for wishlist adds.
type WishlistRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

// HandleGetWishlist lists the actor's wishlist, empty for guests.
func (h *UserHandler) HandleGetWishlist(c *fiber.Ctx) error {
	items, err := h.wishlistService.Wishlist(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, err, "Could not retrieve wishlist")
	}
	return c.JSON(items)
}

// HandleAddWishlistItem saves a product to the wishlist; a no-op for guests.
func (h *UserHandler) HandleAddWishlistItem(c *fiber.Ctx) error {
	var req WishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}
	if err := h.wishlistService.AddToWishlist(c.UserContext(), middleware.Actor(c), req.ProductID); err != nil {
		return fail(c, err, "Could not update wishlist")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Saved"})
}

// HandleRemoveWishlistItem removes a product from the wishlist.
func (h *UserHandler) HandleRemoveWishlistItem(c *fiber.Ctx) error {
	productID, err := models.ParseNumericID(c.Params("productId"))
	if err != nil {
		return fail(c, err, "Invalid product id")
	}
	if err := h.wishlistService.RemoveFromWishlist(c.UserContext(), middleware.Actor(c), productID); err != nil {
		return fail(c, err, "Could not update wishlist")
	}
	return c.JSON(fiber.Map{"message": "Removed"})
}

// CartRequest is the request body for cart writes.
type CartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required"`
}

// HandleGetCart lists the actor's cart, empty for guests.
func (h *UserHandler) HandleGetCart(c *fiber.Ctx) error {
	items, err := h.wishlistService.Cart(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, err, "Could not retrieve cart")
	}
	return c.JSON(items)
}

// HandleSetCartItem sets a product quantity in the cart.
func (h *UserHandler) HandleSetCartItem(c *fiber.Ctx) error {
	var req CartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}
	if err := h.wishlistService.SetCartItem(c.UserContext(), middleware.Actor(c), req.ProductID, req.Quantity); err != nil {
		return fail(c, err, "Could not update cart")
	}
	return c.JSON(fiber.Map{"message": "Cart updated"})
}

// HandleRemoveCartItem removes a product from the cart.
func (h *UserHandler) HandleRemoveCartItem(c *fiber.Ctx) error {
	productID, err := models.ParseNumericID(c.Params("productId"))
	if err != nil {
		return fail(c, err, "Invalid product id")
	}
	if err := h.wishlistService.RemoveCartItem(c.UserContext(), middleware.Actor(c), productID); err != nil {
		return fail(c, err, "Could not update cart")
	}
	return c.JSON(fiber.Map{"message": "Removed"})
}
