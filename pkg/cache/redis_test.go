package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-menu-service/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisClient(&cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestJSONRoundTripAndMiss(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	var out []string
	assert.ErrorIs(t, c.GetJSON(ctx, "catalog:tree", &out), cache.ErrMiss)

	require.NoError(t, c.SetJSON(ctx, "catalog:tree", []string{"soups", "salads"}, time.Minute))
	require.NoError(t, c.GetJSON(ctx, "catalog:tree", &out))
	assert.Equal(t, []string{"soups", "salads"}, out)
}

func TestDeleteByPattern(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("catalog:tree", "1"))
	require.NoError(t, mr.Set("catalog:dishes:abc", "1"))
	require.NoError(t, mr.Set("other:key", "1"))

	require.NoError(t, c.DeleteByPattern(ctx, "catalog:*"))

	assert.False(t, mr.Exists("catalog:tree"))
	assert.False(t, mr.Exists("catalog:dishes:abc"))
	assert.True(t, mr.Exists("other:key"))
}

func TestLock(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	ok, err := c.AcquireLock(ctx, "lock:catalog", "owner-1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireLock(ctx, "lock:catalog", "owner-2", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second owner must not get the lock")

	// a stranger cannot release someone else's lock
	require.NoError(t, c.ReleaseLock(ctx, "lock:catalog", "owner-2"))
	assert.True(t, mr.Exists("lock:catalog"))

	require.NoError(t, c.ReleaseLock(ctx, "lock:catalog", "owner-1"))
	assert.False(t, mr.Exists("lock:catalog"))
}

func TestWithLock(t *testing.T) {
	t.Run("Runs the callback and releases the lock", func(t *testing.T) {
		c, mr := newTestClient(t)
		ran := false
		err := c.WithLock(context.Background(), "lock:catalog", time.Second, func() error {
			ran = true
			assert.True(t, mr.Exists("lock:catalog"))
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
		assert.False(t, mr.Exists("lock:catalog"))
	})

	t.Run("Gives up when the lock stays taken", func(t *testing.T) {
		c, mr := newTestClient(t)
		require.NoError(t, mr.Set("lock:catalog", "someone-else"))

		err := c.WithLock(context.Background(), "lock:catalog", time.Second, func() error {
			t.Fatal("callback must not run")
			return nil
		})
		assert.ErrorIs(t, err, cache.ErrLockBusy)
	})

	t.Run("Stops waiting when the context is cancelled", func(t *testing.T) {
		c, mr := newTestClient(t)
		require.NoError(t, mr.Set("lock:catalog", "someone-else"))

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		start := time.Now()
		err := c.WithLock(ctx, "lock:catalog", time.Second, func() error {
			t.Fatal("callback must not run")
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 250*time.Millisecond)
	})

	t.Run("A nil client runs the callback unlocked", func(t *testing.T) {
		var c *cache.RedisClient
		ran := false
		require.NoError(t, c.WithLock(context.Background(), "lock:catalog", time.Second, func() error {
			ran = true
			return nil
		}))
		assert.True(t, ran)
	})
}
