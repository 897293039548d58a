package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	require.NoError(t, store.Save(ctx, "sid", "user-1", time.Hour))
	userID, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, store.Delete(ctx, "sid"))
	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "sid", "user-1", time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rds, err := Connect(ctx, addr, "", 0)
	require.NoError(t, err)
	defer rds.Close()

	store := NewRedisSessionStore(rds)
	sid := uuid.NewString()

	require.NoError(t, store.Save(ctx, sid, "user-1", time.Minute))
	userID, err := store.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, store.Delete(ctx, sid))
	_, err = store.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
