// Package memory holds map-backed repositories used by tests and by the
// server when it runs with MONGO_DRIVER=memory.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/ports"
)

// UserRepository is an in-memory ports.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]core.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]core.User)}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) CreateUser(_ context.Context, user *core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return core.ErrEmailTaken
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) UserByID(_ context.Context, id string) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) UserByEmail(_ context.Context, email string) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, core.ErrUserNotFound
}

// ListUsers returns users newest first.
func (r *UserRepository) ListUsers(_ context.Context) ([]core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b core.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *UserRepository) UpdateUser(_ context.Context, user *core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return core.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) DeleteUser(_ context.Context, id string) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	delete(r.users, id)
	return &u, nil
}
