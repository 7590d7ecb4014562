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

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside(t *testing.T) {
	ctx := context.Background()

	t.Run("miss loads and caches", func(t *testing.T) {
		mr := withMiniredis(t)

		loads := 0
		var u cachedUser
		err := Aside(ctx, UserKey(7), &u, UserTTL, func() error {
			loads++
			u = cachedUser{ID: 7, Username: "neo", Points: 1200}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, loads)
		assert.True(t, mr.Exists(UserKey(7)))

		// Second call is served from cache.
		var u2 cachedUser
		err = Aside(ctx, UserKey(7), &u2, UserTTL, func() error {
			loads++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, loads)
		assert.Equal(t, u, u2)
	})

	t.Run("load error is propagated and nothing cached", func(t *testing.T) {
		mr := withMiniredis(t)

		var u cachedUser
		wantErr := errors.New("db down")
		err := Aside(ctx, UserKey(9), &u, UserTTL, func() error { return wantErr })
		assert.ErrorIs(t, err, wantErr)
		assert.False(t, mr.Exists(UserKey(9)))
	})

	t.Run("corrupt entry reloaded", func(t *testing.T) {
		mr := withMiniredis(t)
		require.NoError(t, mr.Set(UserKey(3), "{not json"))

		loads := 0
		var u cachedUser
		err := Aside(ctx, UserKey(3), &u, UserTTL, func() error {
			loads++
			u = cachedUser{ID: 3, Username: "trinity"}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, loads)
	})

	t.Run("nil client degrades to direct load", func(t *testing.T) {
		SetClient(nil)
		loads := 0
		var u cachedUser
		err := Aside(ctx, UserKey(1), &u, time.Minute, func() error {
			loads++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, loads)
	})
}

func TestInvalidateRankingPages(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(RankingPageKey(1, 20), "[]"))
	require.NoError(t, mr.Set(RankingPageKey(2, 20), "[]"))
	require.NoError(t, mr.Set(UserKey(1), "{}"))

	InvalidateRankingPages(ctx)

	assert.False(t, mr.Exists(RankingPageKey(1, 20)))
	assert.False(t, mr.Exists(RankingPageKey(2, 20)))
	assert.True(t, mr.Exists(UserKey(1)), "unrelated keys kept")
}
