// Package rolesync propagates role and credential changes to both backing
// stores. The two stores are independently available, so a rigid both-or-
// nothing transaction is impossible; the synchronizer instead attempts both
// writes concurrently, tracks each outcome separately, and reports partial
// success as data. It never raises.
package rolesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
)

// Target names the identity whose state is being changed. Any subset of the
// fields may be known; the synchronizer works with whatever it has.
type Target struct {
	ID      uint
	AuthUID string
	Email   string
}

// documentKey is the key the target's document is filed under, or "" when
// neither a UID nor a numeric id is known.
func (t Target) documentKey() string {
	if t.AuthUID != "" {
		return t.AuthUID
	}
	if t.ID != 0 {
		return models.FormatID(t.ID)
	}
	return ""
}

// Result is the structured outcome of one dual-store change. Overall is true
// when at least one store accepted the write; callers always learn which.
type Result struct {
	Overall         bool   `json:"overall_success"`
	Relational      bool   `json:"relational"`
	Document        bool   `json:"document"`
	RelationalError string `json:"relational_error,omitempty"`
	DocumentError   string `json:"document_error,omitempty"`
}

func combine(relErr, docErr error) Result {
	res := Result{Relational: relErr == nil, Document: docErr == nil}
	res.Overall = res.Relational || res.Document
	if relErr != nil {
		res.RelationalError = relErr.Error()
	}
	if docErr != nil {
		res.DocumentError = docErr.Error()
	}
	return res
}

// Synchronizer performs the dual-store writes.
type Synchronizer struct {
	users   repositories.UserRepository
	docs    repositories.DocumentStore
	timeout time.Duration
}

// NewSynchronizer creates a Synchronizer. A zero timeout selects three
// seconds per store call.
func NewSynchronizer(users repositories.UserRepository, docs repositories.DocumentStore, timeout time.Duration) *Synchronizer {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Synchronizer{users: users, docs: docs, timeout: timeout}
}

// run issues the relational and document attempts concurrently. Neither
// waits on the other to begin; both are awaited before the combined result
// returns.
func (s *Synchronizer) run(ctx context.Context, relational, document func(context.Context) error) Result {
	var relErr, docErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		bctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		relErr = relational(bctx)
	}()
	go func() {
		defer wg.Done()
		bctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		docErr = document(bctx)
	}()
	wg.Wait()
	return combine(relErr, docErr)
}

// SyncRole mirrors a role change into both stores.
func (s *Synchronizer) SyncRole(ctx context.Context, target Target, role models.Role) Result {
	return s.run(ctx,
		func(bctx context.Context) error {
			user, err := s.relationalTarget(bctx, target)
			if err != nil {
				return err
			}
			return s.users.UpdateRole(bctx, user.ID, role)
		},
		func(bctx context.Context) error {
			return s.setDocument(bctx, target, map[string]interface{}{"role": string(role)})
		},
	)
}

// SyncPassword mirrors a password change. The hash lands only in the
// relational store; the document side records the change timestamp so
// divergence stays observable without the credential ever leaving the store
// of record.
func (s *Synchronizer) SyncPassword(ctx context.Context, target Target, hash string) Result {
	return s.run(ctx,
		func(bctx context.Context) error {
			user, err := s.relationalTarget(bctx, target)
			if err != nil {
				return err
			}
			return s.users.UpdatePassword(bctx, user.ID, hash)
		},
		func(bctx context.Context) error {
			return s.setDocument(bctx, target, map[string]interface{}{"passwordUpdatedAt": time.Now().UTC()})
		},
	)
}

// SyncTwoFactor mirrors the two-factor-enabled flag into both stores.
func (s *Synchronizer) SyncTwoFactor(ctx context.Context, target Target, enabled bool) Result {
	return s.run(ctx,
		func(bctx context.Context) error {
			user, err := s.relationalTarget(bctx, target)
			if err != nil {
				return err
			}
			return s.users.SetTwoFactor(bctx, user.ID, enabled)
		},
		func(bctx context.Context) error {
			return s.setDocument(bctx, target, map[string]interface{}{"twoFactorEnabled": enabled})
		},
	)
}

// setDocument writes the patch with merge semantics. Merge is deliberate:
// the target document may not exist yet, and a field-level update would fail
// on it where a merge-set succeeds.
func (s *Synchronizer) setDocument(ctx context.Context, target Target, patch map[string]interface{}) error {
	key := target.documentKey()
	if key == "" {
		return fmt.Errorf("no document key for target")
	}
	return s.docs.Set(ctx, repositories.ColUsers, key, patch)
}

// relationalTarget finds the relational record for the target, materializing
// a minimal one from the document-side profile when it exists only there.
func (s *Synchronizer) relationalTarget(ctx context.Context, target Target) (*models.User, error) {
	if target.AuthUID != "" {
		u, err := s.users.GetByAuthUID(ctx, target.AuthUID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	if target.ID != 0 {
		u, err := s.users.GetByID(ctx, target.ID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	if target.Email != "" {
		u, err := s.users.GetByEmail(ctx, target.Email)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	return s.materialize(ctx, target)
}

// materialize seeds a minimal relational record from whatever document-side
// profile data is available. Without an email there is nothing valid to
// seed, and the relational attempt fails.
func (s *Synchronizer) materialize(ctx context.Context, target Target) (*models.User, error) {
	email := target.Email
	username := ""
	if key := target.documentKey(); email == "" && key != "" {
		if data, err := s.docs.Get(ctx, repositories.ColUsers, key); err == nil {
			du := models.UserFromDocument(key, data)
			email = du.Email
			username = du.Username
		}
	}
	if email == "" {
		return nil, fmt.Errorf("cannot materialize relational record: no email available")
	}
	if username == "" {
		username = email
	}
	user := &models.User{
		AuthUID:  target.AuthUID,
		Email:    email,
		Username: username,
		Password: models.PlaceholderPassword,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("materialize relational record: %w", err)
	}
	return user, nil
}
