// Package identity resolves "who is the user" from whatever identity hints a
// request carries, across both backing stores.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
)

// Registration is the inline payload that allows Resolve to lazily provision
// a canonical record for a previously-unseen external-auth identity.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Hints is the unordered bag of identity tokens accompanying a request. Any
// combination may be present, including none.
type Hints struct {
	// NumericID is the raw id value from the request. It may turn out to be
	// non-numeric, in which case it is retried as an auth UID.
	NumericID string
	AuthUID   string
	Email     string
	// Registration enables auto-provisioning when set alongside AuthUID.
	Registration *Registration
}

// ConvergencePublisher queues a fire-and-forget role mirror so the two
// stores converge without the caller waiting on the write.
type ConvergencePublisher interface {
	PublishRoleSync(uid string, role models.Role) error
}

// Resolver maps identity hints to the canonical user record.
type Resolver struct {
	users     repositories.UserRepository
	docs      repositories.DocumentStore
	publisher ConvergencePublisher
}

// NewResolver creates a Resolver. The publisher may be nil; convergence is
// then skipped.
func NewResolver(users repositories.UserRepository, docs repositories.DocumentStore, publisher ConvergencePublisher) *Resolver {
	return &Resolver{users: users, docs: docs, publisher: publisher}
}

// Resolve finds or lazily provisions the canonical record for the given
// hints. Priority: auth UID, then numeric id, then a non-numeric id retried
// as a UID, then email. Store unavailability on one avenue is not fatal; the
// cascade continues. When nothing matches and a registration payload
// accompanies an auth UID, a new record is provisioned with a placeholder
// password credential. Returns repositories.ErrNotFound when every avenue is
// exhausted.
func (r *Resolver) Resolve(ctx context.Context, h Hints) (*models.User, error) {
	uid := h.AuthUID

	if uid != "" {
		if u, ok := r.byAuthUID(ctx, uid); ok {
			return u, nil
		}
	}

	if h.NumericID != "" {
		if id, err := models.ParseNumericID(h.NumericID); err == nil {
			if u, err := r.users.GetByID(ctx, id); err == nil {
				return u, nil
			} else if !errors.Is(err, repositories.ErrNotFound) {
				log.Printf("identity: lookup by id %d failed, continuing: %v", id, err)
			}
		} else if uid == "" {
			// A non-numeric id is in practice an auth UID sent in the wrong
			// field. Retry it as one.
			uid = h.NumericID
			if u, ok := r.byAuthUID(ctx, uid); ok {
				return u, nil
			}
		}
	}

	if h.Email != "" {
		if u, err := r.users.GetByEmail(ctx, h.Email); err == nil {
			return u, nil
		} else if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("identity: lookup by email failed, continuing: %v", err)
		}
	}

	if uid != "" && h.Registration != nil && h.Registration.Email != "" {
		return r.provision(ctx, uid, h.Registration)
	}

	return nil, fmt.Errorf("%w: no identity hint resolved", repositories.ErrNotFound)
}

// byAuthUID looks up a user by UID in the relational store, healing from the
// document store when the record exists only there.
func (r *Resolver) byAuthUID(ctx context.Context, uid string) (*models.User, bool) {
	u, err := r.users.GetByAuthUID(ctx, uid)
	if err == nil {
		return u, true
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		log.Printf("identity: lookup by auth uid failed, continuing: %v", err)
		return nil, false
	}
	// Orphaned document-side record: materialize the relational side when
	// the document carries enough profile data.
	data, derr := r.docs.Get(ctx, repositories.ColUsers, uid)
	if derr != nil {
		return nil, false
	}
	du := models.UserFromDocument(uid, data)
	if du.Email == "" {
		return nil, false
	}
	healed, herr := r.provision(ctx, uid, &Registration{
		Email:    du.Email,
		Username: du.Username,
		PhotoURL: du.PhotoURL,
	})
	if herr != nil {
		log.Printf("identity: healing orphaned record for uid failed: %v", herr)
		return nil, false
	}
	if du.Role == models.RoleAdmin && healed.Role != models.RoleAdmin {
		// Role authority found only document-side converges via the queue,
		// not inline.
		r.queueConvergence(uid, models.RoleAdmin)
	}
	return healed, true
}

// provision creates (or binds a UID to) the canonical record for an
// external-auth identity. It is idempotent: an existing record for the email
// is reused rather than duplicated.
func (r *Resolver) provision(ctx context.Context, uid string, reg *Registration) (*models.User, error) {
	if existing, err := r.users.GetByEmail(ctx, reg.Email); err == nil {
		if existing.AuthUID == "" {
			if err := r.users.BindAuthUID(ctx, existing.ID, uid); err != nil {
				return nil, fmt.Errorf("bind auth uid: %w", err)
			}
			existing.AuthUID = uid
		}
		return existing, nil
	}

	username := reg.Username
	if username == "" {
		username = reg.Email
	}
	user := &models.User{
		AuthUID:  uid,
		Email:    reg.Email,
		Username: username,
		Password: models.PlaceholderPassword,
		Role:     models.RoleUser,
		PhotoURL: reg.PhotoURL,
	}
	if err := r.users.Create(ctx, user); err != nil {
		// A concurrent provision may have won the race.
		if errors.Is(err, repositories.ErrConflict) {
			if existing, gerr := r.users.GetByEmail(ctx, reg.Email); gerr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("provision user: %w", err)
	}
	if derr := r.docs.Set(ctx, repositories.ColUsers, user.DocumentKey(), user.ToDocument()); derr != nil {
		log.Printf("identity: document mirror of provisioned user %d failed: %v", user.ID, derr)
	}
	return user, nil
}

// IsAdmin decides admin authority for an actor. Either store saying admin
// wins: when only the document store grants it, a convergence message is
// queued so the relational store catches up, without the decision waiting on
// that write.
func (r *Resolver) IsAdmin(ctx context.Context, actor Actor) bool {
	if actor.User.IsAdmin() {
		return true
	}
	uid := actor.AuthUID
	if uid == "" && actor.User != nil {
		uid = actor.User.AuthUID
	}
	if uid == "" {
		return false
	}
	data, err := r.docs.Get(ctx, repositories.ColUsers, uid)
	if err != nil {
		return false
	}
	if role, _ := data["role"].(string); models.Role(role) == models.RoleAdmin {
		r.queueConvergence(uid, models.RoleAdmin)
		return true
	}
	return false
}

func (r *Resolver) queueConvergence(uid string, role models.Role) {
	if r.publisher == nil {
		return
	}
	go func() {
		if err := r.publisher.PublishRoleSync(uid, role); err != nil {
			log.Printf("identity: role convergence publish for uid failed: %v", err)
		}
	}()
}
