package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arhammunir1104/ecom-sub001/internal/dualstore"
	"github.com/arhammunir1104/ecom-sub001/internal/identity"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/payment"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

// captureEvents records published order events.
type captureEvents struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (c *captureEvents) PublishOrderCreated(orderData map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, orderData)
	return nil
}

type orderFixture struct {
	catalog *repositories.MockCatalogRepository
	orders  *repositories.MockOrderRepository
	events  *captureEvents
	service *services.OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	catalog := repositories.NewMockCatalogRepository()
	orders := repositories.NewMockOrderRepository()
	docs := repositories.NewMemoryDocumentStore()
	accessor := dualstore.NewAccessor(catalog, orders, docs, 0)
	events := &captureEvents{}
	return &orderFixture{
		catalog: catalog,
		orders:  orders,
		events:  events,
		service: services.NewOrderService(orders, accessor, payment.StaticGateway{}, events),
	}
}

func (f *orderFixture) seedProduct(t *testing.T, p models.Product) *models.Product {
	t.Helper()
	assert.NoError(t, f.catalog.SaveProduct(context.Background(), &p))
	return &p
}

func authedActor(id uint) identity.Actor {
	return identity.Actor{
		Kind: identity.Authenticated,
		User: &models.User{ID: id, Email: "shopper@example.com", Username: "shopper"},
	}
}

func TestOrderService_GuestCheckout(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, models.Product{Name: "Mug", Price: 12, Stock: 10})

	order, intent, err := f.service.CreateOrder(context.Background(), identity.Actor{Kind: identity.Guest}, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: p.ID, Quantity: 2}},
	})
	assert.NoError(t, err)
	assert.Nil(t, order.UserID)
	assert.Equal(t, 24.0, order.TotalAmount)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.NotEmpty(t, order.PaymentRef)
	assert.NotNil(t, intent)
	assert.Equal(t, 24.0, intent.Amount)
	assert.Equal(t, intent.ID, order.PaymentRef)

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	assert.Len(t, f.events.events, 1)
	assert.NotContains(t, f.events.events[0], "userID")
}

func TestOrderService_CheckoutUsesEffectivePrice(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, models.Product{Name: "Mug", Price: 12, DiscountPrice: 9, Stock: 10})

	order, _, err := f.service.CreateOrder(context.Background(), identity.Actor{Kind: identity.Guest}, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: p.ID, Quantity: 3}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 27.0, order.TotalAmount)
	assert.Equal(t, 9.0, order.Items[0].Price)
}

func TestOrderService_CheckoutRejectsInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, models.Product{Name: "Mug", Price: 12, Stock: 1})

	_, _, err := f.service.CreateOrder(context.Background(), identity.Actor{Kind: identity.Guest}, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: p.ID, Quantity: 2}},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
}

func TestOrderService_CheckoutUnknownProduct(t *testing.T) {
	f := newOrderFixture(t)

	_, _, err := f.service.CreateOrder(context.Background(), identity.Actor{Kind: identity.Guest}, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: 404, Quantity: 1}},
	})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderService_AuthenticatedCheckoutClearsCart(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, models.Product{Name: "Mug", Price: 12, Stock: 10})
	actor := authedActor(7)

	assert.NoError(t, f.orders.UpsertCartItem(context.Background(), &models.CartItem{UserID: 7, ProductID: p.ID, Quantity: 2}))

	order, _, err := f.service.CreateOrder(context.Background(), actor, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: p.ID, Quantity: 2}},
	})
	assert.NoError(t, err)
	assert.NotNil(t, order.UserID)
	assert.Equal(t, uint(7), *order.UserID)

	cart, err := f.orders.Cart(context.Background(), 7)
	assert.NoError(t, err)
	assert.Empty(t, cart)
}

func TestOrderService_ListOrdersGuestIsEmpty(t *testing.T) {
	f := newOrderFixture(t)

	orders, err := f.service.ListOrders(context.Background(), identity.Actor{Kind: identity.Guest})
	assert.NoError(t, err)
	assert.Empty(t, orders)

	orders, err = f.service.ListOrders(context.Background(), identity.Actor{Kind: identity.FirebaseOnly, AuthUID: "uid-x"})
	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_GetOrderOwnership(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, models.Product{Name: "Mug", Price: 12, Stock: 10})

	owner := authedActor(7)
	order, _, err := f.service.CreateOrder(context.Background(), owner, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	assert.NoError(t, err)
	key := models.FormatID(order.ID)

	got, err := f.service.GetOrder(context.Background(), owner, key, false)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// Another user sees not-found, not forbidden: order existence is not
	// disclosed.
	_, err = f.service.GetOrder(context.Background(), authedActor(8), key, false)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Admins see everything.
	got, err = f.service.GetOrder(context.Background(), authedActor(8), key, true)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrderService_GuestOrderReachableOnlyByAdmin(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, models.Product{Name: "Mug", Price: 12, Stock: 10})

	order, _, err := f.service.CreateOrder(context.Background(), identity.Actor{Kind: identity.Guest}, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	assert.NoError(t, err)
	key := models.FormatID(order.ID)

	_, err = f.service.GetOrder(context.Background(), authedActor(7), key, false)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	got, err := f.service.GetOrder(context.Background(), identity.Actor{Kind: identity.Guest}, key, true)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrderService_UpdateStatusValidation(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, models.Product{Name: "Mug", Price: 12, Stock: 10})
	order, _, err := f.service.CreateOrder(context.Background(), identity.Actor{Kind: identity.Guest}, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	assert.NoError(t, err)
	key := models.FormatID(order.ID)

	assert.Error(t, f.service.UpdateStatus(context.Background(), key, "teleported"))
	assert.NoError(t, f.service.UpdateStatus(context.Background(), key, models.OrderShipped))

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderShipped, stored.Status)
}
