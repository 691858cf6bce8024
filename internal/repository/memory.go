package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/model"
)

// memoryRepository keeps users in an ordered slice guarded by a mutex.
// Lookups are linear; the slice preserves registration order.
type memoryRepository struct {
	mu    sync.RWMutex
	users []model.User
}

// NewMemoryRepository builds an in-memory repository. Records do not
// survive a restart.
func NewMemoryRepository() UserRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, *user)
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memoryRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].Email == email {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memoryRepository) List(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]model.User, len(r.users))
	copy(users, r.users)
	return users, nil
}

func (r *memoryRepository) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}
