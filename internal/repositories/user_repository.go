package repositories

import (
	"context"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// UserRepository defines relational-store access to canonical user records.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByAuthUID(ctx context.Context, uid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uint, role models.Role) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	SetTwoFactor(ctx context.Context, id uint, enabled bool) error
	BindAuthUID(ctx context.Context, id uint, uid string) error
}
