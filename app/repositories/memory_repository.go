package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/authflow/app/models"
)

// MemoryUserRepository keeps users in process. Used by tests and by the
// identity service when no database is configured.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID uint
	users  map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.users[key]; ok {
		return ErrDuplicateEmail
	}
	r.nextID++
	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[key] = *user
	return nil
}

// Len reports how many users are stored.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
