package services

import (
	"context"
	"fmt"
	"log"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
	"github.com/arhammunir1104/ecom-sub001/internal/rolesync"
)

// UserService handles profile edits and admin role changes.
type UserService struct {
	users  repositories.UserRepository
	docs   repositories.DocumentStore
	syncer *rolesync.Synchronizer
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, docs repositories.DocumentStore, syncer *rolesync.Synchronizer) *UserService {
	return &UserService{users: users, docs: docs, syncer: syncer}
}

// ChangeRole propagates a role change to both stores and reports the
// per-store outcome. It never errors on store failure; total failure is
// visible in the result.
func (s *UserService) ChangeRole(ctx context.Context, target rolesync.Target, role models.Role) (rolesync.Result, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return rolesync.Result{}, fmt.Errorf("invalid role: %s", role)
	}
	return s.syncer.SyncRole(ctx, target, role), nil
}

// UpdateProfile edits the user's display fields. The relational store is of
// record for the profile; the document copy is mirrored best-effort.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, username, photoURL string) error {
	if username != "" {
		user.Username = username
	}
	if photoURL != "" {
		user.PhotoURL = photoURL
	}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if derr := s.docs.Set(ctx, repositories.ColUsers, user.DocumentKey(), map[string]interface{}{
		"username": user.Username,
		"photoURL": user.PhotoURL,
	}); derr != nil {
		log.Printf("user: document mirror of profile %d failed: %v", user.ID, derr)
	}
	return nil
}
