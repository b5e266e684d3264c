// Package payment abstracts the payment gateway. The gateway protocol is
// opaque to this system: checkout asks for a client-usable handle for an
// amount and stores the reference on the order.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Intent is a client-usable payment handle.
type Intent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// Gateway creates payment handles.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string) (*Intent, error)
}

// StaticGateway issues locally-generated handles without contacting any
// processor. Development and test deployments wire this in.
type StaticGateway struct{}

// CreateIntent returns a handle with generated identifiers.
func (StaticGateway) CreateIntent(ctx context.Context, amount float64, currency string) (*Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment: amount must be positive")
	}
	if currency == "" {
		currency = "usd"
	}
	id := uuid.New().String()
	return &Intent{
		ID:           "pi_" + id,
		ClientSecret: "pi_" + id + "_secret_" + uuid.New().String(),
		Amount:       amount,
		Currency:     currency,
	}, nil
}
