package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.User.Set(ctx, "id:1", cachedItem{ID: 1, Name: "alice"}, time.Minute))
	assert.True(t, mr.Exists("user:id:1"))

	var got cachedItem
	require.NoError(t, cm.User.Get(ctx, "id:1", &got))
	assert.Equal(t, "alice", got.Name)

	InvalidateUserCache(ctx, cm, 1)
	assert.ErrorIs(t, cm.User.Get(ctx, "id:1", &got), ErrCacheNotFound)
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []cachedItem{{ID: 1, Name: "Math"}}, nil
	}

	var first, second []cachedItem
	require.NoError(t, cm.Department.CacheOrExecute(ctx, "list:all", &first, time.Minute, fetch))
	require.NoError(t, cm.Department.CacheOrExecute(ctx, "list:all", &second, time.Minute, fetch))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	InvalidateDepartmentCache(ctx, cm)
	require.NoError(t, cm.Department.CacheOrExecute(ctx, "list:all", &second, time.Minute, fetch))
	assert.Equal(t, 2, calls)
}

func TestCacheHelper_CacheOrExecute_FetchError(t *testing.T) {
	cm, _ := newTestManager(t)
	boom := errors.New("boom")

	var dest []cachedItem
	err := cm.Department.CacheOrExecute(context.Background(), "list:all", &dest, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCacheHelper_WithoutRedis(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	assert.False(t, cm.User.Available())
	assert.NoError(t, cm.User.Set(ctx, "id:1", cachedItem{}, time.Minute))
	assert.ErrorIs(t, cm.User.Get(ctx, "id:1", &cachedItem{}), ErrCacheNotAvailable)
	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)

	calls := 0
	var dest cachedItem
	require.NoError(t, cm.User.CacheOrExecute(ctx, "id:1", &dest, time.Minute, func() (interface{}, error) {
		calls++
		return cachedItem{ID: 1}, nil
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint(1), dest.ID)
}

func TestCacheManager_HealthCheck(t *testing.T) {
	cm, mr := newTestManager(t)
	assert.NoError(t, cm.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, cm.HealthCheck(context.Background()))
}
