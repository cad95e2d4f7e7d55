//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sunday4k/sunday4k/pkg/cache"
	"github.com/sunday4k/sunday4k/pkg/redis"
)

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, redis.Config{URL: url, RetryAttempts: 1}, nil)
	require.NoError(t, err, "failed to connect to Redis")

	t.Cleanup(func() { _ = client.Close() })
	return client
}

type templateRow struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
}

func TestRedis_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewRedis[templateRow](newTestRedisClient(t), "test-roundtrip", time.Minute)
	t.Cleanup(func() { _ = c.Clear(ctx) })

	_, err := c.Get(ctx, "welcome")
	require.ErrorIs(t, err, cache.ErrNotFound)

	row := templateRow{Name: "welcome", Subject: "Hi {{contact.firstname}}"}
	require.NoError(t, c.Set(ctx, "welcome", row, 0))

	got, err := c.Get(ctx, "welcome")
	require.NoError(t, err)
	require.Equal(t, row, got)

	require.NoError(t, c.Delete(ctx, "welcome"))
	_, err = c.Get(ctx, "welcome")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedis_ClearOnlyTouchesPrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestRedisClient(t)
	a := cache.NewRedis[string](client, "test-clear-a", time.Minute)
	b := cache.NewRedis[string](client, "test-clear-b", time.Minute)
	t.Cleanup(func() { _ = b.Clear(ctx) })

	for _, k := range []string{"1", "2", "3"} {
		require.NoError(t, a.Set(ctx, k, k, 0))
	}
	require.NoError(t, b.Set(ctx, "keep", "me", 0))

	require.NoError(t, a.Clear(ctx))

	_, err := a.Get(ctx, "1")
	require.ErrorIs(t, err, cache.ErrNotFound)
	v, err := b.Get(ctx, "keep")
	require.NoError(t, err)
	require.Equal(t, "me", v)

	require.ErrorIs(t, cache.NewRedis[string](client, "", 0).Clear(ctx), cache.ErrNoPrefix)
}
