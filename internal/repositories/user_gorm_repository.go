package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// mapGormErr translates GORM errors into the store-layer sentinels.
func mapGormErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"),
		strings.Contains(err.Error(), "duplicate key"):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	}
}

// Create inserts a new user.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	return mapGormErr("create user", r.db.WithContext(ctx).Create(user).Error)
}

// GetByID retrieves a user by numeric primary key.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, mapGormErr(fmt.Sprintf("get user %d", id), err)
	}
	return &user, nil
}

// GetByAuthUID retrieves a user by the bound external auth UID.
func (r *GORMUserRepository) GetByAuthUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "auth_uid = ?", uid).Error; err != nil {
		return nil, mapGormErr("get user by auth uid", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, mapGormErr("get user by email", err)
	}
	return &user, nil
}

// Update persists the full record.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	return mapGormErr("update user", r.db.WithContext(ctx).Save(user).Error)
}

func (r *GORMUserRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return mapGormErr("update "+column, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}

// UpdateRole sets the role column.
func (r *GORMUserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

// UpdatePassword sets the password hash column.
func (r *GORMUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

// SetTwoFactor flips the two-factor-enabled flag.
func (r *GORMUserRepository) SetTwoFactor(ctx context.Context, id uint, enabled bool) error {
	return r.updateColumn(ctx, id, "two_factor_enabled", enabled)
}

// BindAuthUID attaches an external auth UID to an existing record.
func (r *GORMUserRepository) BindAuthUID(ctx context.Context, id uint, uid string) error {
	return r.updateColumn(ctx, id, "auth_uid", uid)
}
