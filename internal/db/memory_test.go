package db

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCreateAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	exists, err := m.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	created, err := m.CreateUser(ctx, "alice", "digest")
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	exists, err = m.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := m.GetActiveUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = m.CreateUser(ctx, "alice", "other")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestMemoryInactiveUsersStayReserved(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.CreateUser(ctx, "alice", "digest")
	require.NoError(t, err)
	require.True(t, m.Deactivate("alice"))
	assert.False(t, m.Deactivate("bob"))

	_, err = m.GetActiveUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = m.CreateUser(ctx, "alice", "digest")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestMemoryConcurrentCreate(t *testing.T) {
	m := NewMemory()

	var (
		wg      sync.WaitGroup
		created atomic.Int32
		taken   atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.CreateUser(context.Background(), "alice", "digest"); err == nil {
				created.Add(1)
			} else if err == ErrUsernameTaken {
				taken.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(49), taken.Load())
}
