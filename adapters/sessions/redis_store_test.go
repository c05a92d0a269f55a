package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client).(*RedisStore), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "session-1")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, store.Put(ctx, "session-1", time.Hour))

	exists, err = store.Exists(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, store.Delete(ctx, "session-1"))

	exists, err = store.Exists(ctx, "session-1")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", time.Minute))

	mr.FastForward(2 * time.Minute)

	exists, err := store.Exists(ctx, "session-1")
	require.NoError(t, err)
	require.False(t, exists)
}
