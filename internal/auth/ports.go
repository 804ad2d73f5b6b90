package auth

import (
	"context"
	"sync"
)

// Repository is the persistence port for users.
type Repository interface {
	// CreateUser returns ErrUsernameTaken when the username exists.
	CreateUser(ctx context.Context, u *User) error
	// GetByUsername returns ErrUserNotFound when the username is unknown.
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByID returns ErrUserNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*User, error)
}

// MemoryRepository is an in-process Repository used by the local REPL and
// tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*User
	byName map[string]*User
}

// NewMemoryRepository builds an empty in-memory user repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]*User),
		byName: make(map[string]*User),
	}
}

func (r *MemoryRepository) CreateUser(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; ok {
		return ErrUsernameTaken
	}
	clone := *u
	r.byID[u.ID] = &clone
	r.byName[u.Username] = &clone
	return nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}
