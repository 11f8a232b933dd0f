package storage

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrDuplicateID = errors.New("user id already exists")
)

// User is one row of the users table. PasswordHash holds either the legacy
// sentinel or a SHA-256 hex digest; the storage layer never sees plaintext.
type User struct {
	ID           string
	PasswordHash string
}

type UserStore interface {
	Lookup(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, id, passwordHash string) error
}

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User)}
}

func (m *MemoryUserStore) Lookup(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &User{ID: user.ID, PasswordHash: user.PasswordHash}, nil
}

func (m *MemoryUserStore) Create(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; ok {
		return ErrDuplicateID
	}
	m.users[id] = User{ID: id, PasswordHash: passwordHash}
	return nil
}
