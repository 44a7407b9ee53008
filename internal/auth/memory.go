package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryUsers is an in-process UserStore for tests and local runs.
type MemoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]User
	ids    map[string]int64
	now    func() time.Time
}

var _ UserStore = (*MemoryUsers)(nil)

// NewMemoryUsers returns an empty in-memory account store.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		nextID: 1,
		byID:   make(map[int64]User),
		ids:    make(map[string]int64),
		now:    time.Now,
	}
}

func (m *MemoryUsers) Create(_ context.Context, email, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[email]; ok {
		return User{}, ErrAlreadyExists
	}
	now := m.now().UTC()
	u := User{
		ID:           m.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.nextID++
	m.byID[u.ID] = u
	m.ids[email] = u.ID
	return u, nil
}

func (m *MemoryUsers) Find(_ context.Context, id int64) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryUsers) FindByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.ids[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return m.byID[id], nil
}
