package services

import (
	"context"
	"fmt"
	"log"

	"github.com/arhammunir1104/ecom-sub001/internal/dualstore"
	"github.com/arhammunir1104/ecom-sub001/internal/identity"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/payment"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
)

// OrderEventPublisher emits order lifecycle events. A nil publisher skips
// publication; failures never block checkout.
type OrderEventPublisher interface {
	PublishOrderCreated(orderData map[string]interface{}) error
}

// CheckoutItem is one requested order line.
type CheckoutItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest is the body of a checkout call.
type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string         `json:"shipping_address,omitempty"`
	Currency        string         `json:"currency,omitempty"`
}

// OrderService handles business logic for checkout and order retrieval.
type OrderService struct {
	orders   repositories.OrderRepository
	accessor *dualstore.Accessor
	gateway  payment.Gateway
	events   OrderEventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository, accessor *dualstore.Accessor, gateway payment.Gateway, events OrderEventPublisher) *OrderService {
	return &OrderService{orders: orders, accessor: accessor, gateway: gateway, events: events}
}

// CreateOrder prices the requested items, obtains a payment handle, and
// persists the order. Guest checkout is first-class: with no resolvable
// identity the order stores a null owner reference.
func (s *OrderService) CreateOrder(ctx context.Context, actor identity.Actor, req CheckoutRequest) (*models.Order, *payment.Intent, error) {
	if len(req.Items) == 0 {
		return nil, nil, fmt.Errorf("at least one item is required")
	}

	var total float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.accessor.Product(ctx, models.FormatID(line.ProductID))
		if err != nil {
			return nil, nil, fmt.Errorf("product %d: %w", line.ProductID, err)
		}
		if product.Stock < line.Quantity {
			return nil, nil, fmt.Errorf("insufficient stock for %s (requested %d, available %d)",
				product.Name, line.Quantity, product.Stock)
		}
		price := product.EffectivePrice()
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     price,
		})
		total += price * float64(line.Quantity)
	}

	intent, err := s.gateway.CreateIntent(ctx, total, req.Currency)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	order := &models.Order{
		UserID:          actor.UserID(),
		Items:           items,
		TotalAmount:     total,
		Status:          models.OrderPending,
		PaymentRef:      intent.ID,
		ShippingAddress: req.ShippingAddress,
	}
	if err := s.accessor.CreateOrder(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	if actor.Authenticated() {
		if err := s.orders.ClearCart(ctx, actor.User.ID); err != nil {
			log.Printf("order: clearing cart for user %d failed: %v", actor.User.ID, err)
		}
	}

	s.publishCreated(order)
	return order, intent, nil
}

func (s *OrderService) publishCreated(order *models.Order) {
	if s.events == nil {
		return
	}
	event := map[string]interface{}{
		"orderID": order.ID,
		"status":  order.Status,
		"total":   order.TotalAmount,
	}
	if order.UserID != nil {
		event["userID"] = *order.UserID
	}
	if err := s.events.PublishOrderCreated(event); err != nil {
		log.Printf("order: failed to publish order created event for order %d: %v", order.ID, err)
	}
}

// ListOrders returns the actor's orders. Guests and firebase-only actors
// have none; the result is empty, not an error.
func (s *OrderService) ListOrders(ctx context.Context, actor identity.Actor) ([]models.Order, error) {
	if !actor.Authenticated() {
		return []models.Order{}, nil
	}
	return s.orders.ByUser(ctx, actor.User.ID)
}

// ListAllOrders returns every order. Admin-only; the handler gates it.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.All(ctx)
}

// GetOrder retrieves one order, restricted to its owner unless asAdmin.
// Guest-placed orders (null owner) are only reachable by admins.
func (s *OrderService) GetOrder(ctx context.Context, actor identity.Actor, key string, asAdmin bool) (*models.Order, error) {
	order, err := s.accessor.Order(ctx, key)
	if err != nil {
		return nil, err
	}
	if asAdmin {
		return order, nil
	}
	if order.UserID == nil || !actor.Authenticated() || *order.UserID != actor.User.ID {
		return nil, fmt.Errorf("%w: order %s", repositories.ErrNotFound, key)
	}
	return order, nil
}

// UpdateStatus moves an order through the fulfilment lifecycle. Admin-only.
func (s *OrderService) UpdateStatus(ctx context.Context, key, status string) error {
	valid := map[string]bool{
		models.OrderPending:   true,
		models.OrderPaid:      true,
		models.OrderShipped:   true,
		models.OrderDelivered: true,
		models.OrderCancelled: true,
	}
	if !valid[status] {
		return fmt.Errorf("invalid order status: %s", status)
	}
	return s.accessor.UpdateOrderStatus(ctx, key, status)
}
