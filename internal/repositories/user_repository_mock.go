package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[uint]models.User
	nextID uint

	// FailWith, when set, makes every call return that error. Tests use it
	// to exercise the unavailable-store paths.
	FailWith error
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]models.User),
		nextID: 1,
	}
}

// Create adds a new user, enforcing unique email and auth UID.
func (r *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	for _, u := range r.users {
		if u.Email == user.Email || (user.AuthUID != "" && u.AuthUID == user.AuthUID) {
			return fmt.Errorf("%w: user %s", ErrConflict, user.Email)
		}
	}
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

// GetByID returns a user by its numeric ID.
func (r *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return &user, nil
}

// GetByAuthUID returns a user by its external auth UID.
func (r *MockUserRepository) GetByAuthUID(ctx context.Context, uid string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, u := range r.users {
		if u.AuthUID == uid && uid != "" {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: auth uid %s", ErrNotFound, uid)
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: email %s", ErrNotFound, email)
}

// Update replaces an existing user record.
func (r *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, user.ID)
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

// UpdateRole sets the role of a user.
func (r *MockUserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	return r.patch(id, func(u *models.User) { u.Role = role })
}

// UpdatePassword sets the password hash of a user.
func (r *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.patch(id, func(u *models.User) { u.Password = hash })
}

// SetTwoFactor sets the two-factor-enabled flag of a user.
func (r *MockUserRepository) SetTwoFactor(ctx context.Context, id uint, enabled bool) error {
	return r.patch(id, func(u *models.User) { u.TwoFactorEnabled = enabled })
}

// BindAuthUID attaches an external auth UID to an existing user.
func (r *MockUserRepository) BindAuthUID(ctx context.Context, id uint, uid string) error {
	return r.patch(id, func(u *models.User) { u.AuthUID = uid })
}

func (r *MockUserRepository) patch(id uint, apply func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	apply(&user)
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}
