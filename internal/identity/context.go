package identity

import (
	"context"
	"errors"

	"github.com/arhammunir1104/ecom-sub001/internal/repositories"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// Kind classifies the acting identity of a request.
type Kind int

const (
	// Guest carries no usable identity. Cart and wishlist operations
	// degrade to no-ops; order creation stores a null owner.
	Guest Kind = iota
	// FirebaseOnly carries a valid external-auth UID with no canonical
	// record yet.
	FirebaseOnly
	// Authenticated carries a resolved canonical record.
	Authenticated
)

// Actor is the effective acting identity derived for a request. Every
// order, cart, and wishlist operation keys off it.
type Actor struct {
	Kind    Kind
	User    *models.User
	AuthUID string
}

// UserID returns the numeric owner reference, or nil for guests and
// firebase-only actors. Orders persist exactly this value.
func (a Actor) UserID() *uint {
	if a.Kind == Authenticated && a.User != nil {
		id := a.User.ID
		return &id
	}
	return nil
}

// Authenticated reports whether the actor has a canonical record.
func (a Actor) Authenticated() bool {
	return a.Kind == Authenticated && a.User != nil
}

// ActorFromHints derives the request's acting identity. Resolution failures
// never error: an unresolvable identity degrades to FirebaseOnly when a UID
// is present, otherwise to Guest.
func (r *Resolver) ActorFromHints(ctx context.Context, h Hints) Actor {
	u, err := r.Resolve(ctx, h)
	if err == nil {
		return Actor{Kind: Authenticated, User: u, AuthUID: u.AuthUID}
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		// Both stores down still leaves the request serviceable as a guest.
		return Actor{Kind: Guest}
	}
	if h.AuthUID != "" {
		return Actor{Kind: FirebaseOnly, AuthUID: h.AuthUID}
	}
	if h.NumericID != "" {
		if _, perr := models.ParseNumericID(h.NumericID); perr != nil {
			return Actor{Kind: FirebaseOnly, AuthUID: h.NumericID}
		}
	}
	return Actor{Kind: Guest}
}
