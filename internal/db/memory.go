package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/incognito-chat/backend/internal/model"
)

// Memory is a process-local user store for STORE_DRIVER=memory and tests.
// Usernames are unique under the same rules as the users table.
type Memory struct {
	mu    sync.RWMutex
	users map[string]model.User
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]model.User),
		now:   time.Now,
	}
}

func (m *Memory) UsernameExists(_ context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[username]
	return ok, nil
}

func (m *Memory) CreateUser(_ context.Context, username, passwordHash string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return nil, ErrUsernameTaken
	}
	now := m.now().UTC()
	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
	}
	m.users[username] = user
	return &user, nil
}

func (m *Memory) GetActiveUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[username]
	if !ok || !user.IsActive {
		return nil, ErrNotFound
	}
	return &user, nil
}

// Deactivate marks a user inactive. The username stays reserved.
func (m *Memory) Deactivate(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[username]
	if !ok {
		return false
	}
	user.IsActive = false
	m.users[username] = user
	return true
}

func (m *Memory) Ping(context.Context) error {
	return nil
}
