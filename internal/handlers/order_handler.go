package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/arhammunir1104/ecom-sub001/internal/identity"
	"github.com/arhammunir1104/ecom-sub001/internal/middleware"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

// OrderHandler handles HTTP requests for checkout and orders.
type OrderHandler struct {
	service  *services.OrderService
	resolver *identity.Resolver
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, resolver *identity.Resolver) *OrderHandler {
	return &OrderHandler{
		service:  service,
		resolver: resolver,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes. Checkout is open to guests;
// listing everything and moving fulfilment status are admin-only.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, requireAdmin fiber.Handler) {
	orders := router.Group("/orders")
	orders.Post("/", h.HandleCreateOrder)
	orders.Get("/", h.HandleListOrders)
	orders.Get("/all", requireAdmin, h.HandleListAllOrders)
	orders.Get("/:id", h.HandleGetOrder)
	orders.Patch("/:id/status", requireAdmin, h.HandleUpdateStatus)
}

// HandleCreateOrder runs checkout. With no resolvable identity the order is
// stored with a null owner: guest checkout must succeed.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}

	order, intent, err := h.service.CreateOrder(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return fail(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":   order,
		"payment": intent,
	})
}

// HandleListOrders lists the acting identity's orders; empty for guests.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), middleware.Actor(c))
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return fail(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleListAllOrders lists every order for the back-office.
func (h *OrderHandler) HandleListAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAllOrders(c.UserContext())
	if err != nil {
		return fail(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrder retrieves one order, visible to its owner or an admin.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	asAdmin := actor.Kind != identity.Guest && h.resolver.IsAdmin(c.UserContext(), actor)
	order, err := h.service.GetOrder(c.UserContext(), actor, c.Params("id"), asAdmin)
	if err != nil {
		return fail(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleUpdateStatus moves an order through the fulfilment lifecycle.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}
	if err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status); err != nil {
		log.Printf("Error updating order status: %v", err)
		return fail(c, err, "Could not update order status")
	}
	return c.JSON(fiber.Map{"message": "Order status updated"})
}
