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

type cachedFeed struct {
	IDs []uint `json:"ids"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = Close() })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedFeed) func() error {
		return func() error {
			calls++
			dest.IDs = []uint{3, 2, 1}
			return nil
		}
	}

	var first cachedFeed
	require.NoError(t, Aside(ctx, FamilyFeed, FeedKey(), &first, time.Minute, fetch(&first)))
	assert.True(t, mr.Exists(FeedKey()))

	var second cachedFeed
	require.NoError(t, Aside(ctx, FamilyFeed, FeedKey(), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []uint{3, 2, 1}, second.IDs)

	mr.FastForward(2 * time.Minute)
	var third cachedFeed
	require.NoError(t, Aside(ctx, FamilyFeed, FeedKey(), &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("store down")

	var dest cachedFeed
	err := Aside(context.Background(), FamilyFeed, FeedKey(), &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(FeedKey()))
}

func TestAside_RedisDownFallsThrough(t *testing.T) {
	mr := withMiniredis(t)
	mr.Close()

	var dest cachedFeed
	err := Aside(context.Background(), FamilyFeed, FeedKey(), &dest, time.Minute, func() error {
		dest.IDs = []uint{7}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, dest.IDs)
}

func TestAside_NoClient(t *testing.T) {
	SetClient(nil)
	called := false
	require.NoError(t, Aside(context.Background(), FamilyFeed, FeedKey(), &cachedFeed{}, time.Minute, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
	InvalidateFeeds(context.Background(), 1)
}

func TestInvalidateFeeds(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set(FeedKey(), "{}"))
	require.NoError(t, mr.Set(AuthorFeedKey(4), "{}"))
	require.NoError(t, mr.Set(AuthorFeedKey(5), "{}"))

	InvalidateFeeds(context.Background(), 4)

	assert.False(t, mr.Exists(FeedKey()))
	assert.False(t, mr.Exists(AuthorFeedKey(4)))
	assert.True(t, mr.Exists(AuthorFeedKey(5)))
}
