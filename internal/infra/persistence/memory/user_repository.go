package memory

import (
	"context"
	"sync"

	domuser "example.com/storefront/internal/domain/user"
)

type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]*domuser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, byEmail: make(map[string]*domuser.User)}
}

func (r *UserRepository) Create(ctx context.Context, u *domuser.User) (*domuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domuser.NormalizeEmail(u.Email)
	if _, ok := r.byEmail[email]; ok {
		return nil, domuser.ErrEmailAlreadyUsed
	}

	stored := *u
	stored.ID = r.nextID
	stored.Email = email
	r.nextID++
	r.byEmail[email] = &stored

	out := stored
	return &out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byEmail {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[domuser.NormalizeEmail(email)]
	if !ok {
		return nil, domuser.ErrUserNotFound
	}
	out := *u
	return &out, nil
}
