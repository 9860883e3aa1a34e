package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
)

type MemoryUserRepository struct {
	users map[domain.UserID]*domain.User
	mu    sync.RWMutex
}

func NewMemoryUserRepository() ports.UserRepository {
	return &MemoryUserRepository{
		users: make(map[domain.UserID]*domain.User),
	}
}

// clone keeps callers from mutating stored state outside the lock; the
// token version in particular must only change through the atomic
// operations below.
func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return domain.ErrUsernameTaken
	}
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrEmailTaken
		}
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}

	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return clone(user), nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return clone(user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return clone(user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Update writes mutable profile fields. The token version is owned by
// IncrementTokenVersion/UpdatePassword and is deliberately not taken
// from the caller's copy, so a stale read can never roll it back.
func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[user.ID]
	if !exists {
		return domain.ErrUserNotFound
	}

	updated := clone(user)
	updated.TokenVersion = stored.TokenVersion
	updated.PasswordHash = stored.PasswordHash
	r.users[user.ID] = updated
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[id]; !exists {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, clone(user))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	if offset >= len(all) {
		return []*domain.User{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *MemoryUserRepository) IncrementTokenVersion(ctx context.Context, id domain.UserID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return 0, domain.ErrUserNotFound
	}
	user.TokenVersion++
	user.UpdatedAt = time.Now()
	return user.TokenVersion, nil
}

func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return 0, domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.TokenVersion++
	user.UpdatedAt = time.Now()
	return user.TokenVersion, nil
}
