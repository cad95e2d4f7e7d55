package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sunday4k/sunday4k/pkg/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemory[V any](t *testing.T, clock *fakeClock, opts ...cache.MemoryOption) *cache.Memory[V] {
	t.Helper()
	opts = append([]cache.MemoryOption{cache.WithClock(clock.Now), cache.WithCleanupInterval(0)}, opts...)
	c := cache.NewMemory[V](opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		c := newMemory[string](t, newFakeClock())
		_, err := c.Get(ctx, "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("stored value and overwrite", func(t *testing.T) {
		t.Parallel()

		c := newMemory[int](t, newFakeClock())
		require.NoError(t, c.Set(ctx, "key", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "key", 2, time.Minute))

		val, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, 2, val)
		require.Equal(t, 1, c.Len())
	})

	t.Run("expires after ttl", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := newMemory[string](t, clock)
		require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

		clock.Advance(59 * time.Second)
		_, err := c.Get(ctx, "key")
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		_, err = c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("zero ttl uses default", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := newMemory[string](t, clock, cache.WithDefaultTTL(5*time.Minute))
		require.NoError(t, c.Set(ctx, "key", "value", 0))

		clock.Advance(4 * time.Minute)
		_, err := c.Get(ctx, "key")
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)
		_, err = c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("negative ttl never expires", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := newMemory[string](t, clock)
		require.NoError(t, c.Set(ctx, "key", "forever", -1))

		clock.Advance(24 * 365 * time.Hour)
		val, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, "forever", val)
	})
}

func TestMemory_LRU(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newMemory[string](t, newFakeClock(), cache.WithMaxEntries(2))

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))

	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", "3", time.Minute))

	_, err = c.Get(ctx, "a")
	require.NoError(t, err, "a was recently used")
	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, cache.ErrNotFound, "b was least recently used")
	require.Equal(t, 2, c.Len())
}

func TestMemory_DeleteClearClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithCleanupInterval(0))

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, c.Set(ctx, "c", "3", time.Minute))

	require.NoError(t, c.Delete(ctx, "a", "missing"))
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.Clear(ctx))
	require.Equal(t, 0, c.Len())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "close is idempotent")

	require.ErrorIs(t, c.Set(ctx, "a", "1", time.Minute), cache.ErrClosed)
	require.ErrorIs(t, c.Delete(ctx, "a"), cache.ErrClosed)
	require.ErrorIs(t, c.Clear(ctx), cache.ErrClosed)
	_, err := c.Get(ctx, "a")
	require.ErrorIs(t, err, cache.ErrClosed)
}

func TestMemory_Janitor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithCleanupInterval(5 * time.Millisecond))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "short", "x", time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", "y", time.Hour))

	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestNew_PicksMemoryWithoutRedis(t *testing.T) {
	t.Parallel()

	c := cache.New[string](cache.Config{TTL: time.Minute, MaxEntries: 10}, nil, "catalog")
	defer c.Close()

	_, ok := c.(*cache.Memory[string])
	require.True(t, ok)
}

func TestLoader_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("loads once then serves cached value", func(t *testing.T) {
		t.Parallel()

		loader := cache.NewLoader[string](newMemory[string](t, newFakeClock()), time.Minute, nil)
		var calls atomic.Int32
		fn := func(context.Context) (string, error) {
			calls.Add(1)
			return "loaded", nil
		}

		for range 3 {
			v, err := loader.Get(ctx, "key", fn)
			require.NoError(t, err)
			require.Equal(t, "loaded", v)
		}
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		loader := cache.NewLoader[string](newMemory[string](t, newFakeClock()), time.Minute, nil)
		boom := errors.New("db down")

		_, err := loader.Get(ctx, "key", func(context.Context) (string, error) { return "", boom })
		require.ErrorIs(t, err, boom)

		v, err := loader.Get(ctx, "key", func(context.Context) (string, error) { return "ok", nil })
		require.NoError(t, err)
		require.Equal(t, "ok", v)
	})

	t.Run("invalidate reloads", func(t *testing.T) {
		t.Parallel()

		loader := cache.NewLoader[int](newMemory[int](t, newFakeClock()), time.Minute, nil)
		n := 0
		fn := func(context.Context) (int, error) {
			n++
			return n, nil
		}

		v, _ := loader.Get(ctx, "key", fn)
		require.Equal(t, 1, v)

		require.NoError(t, loader.Invalidate(ctx, "key"))
		v, _ = loader.Get(ctx, "key", fn)
		require.Equal(t, 2, v)

		require.NoError(t, loader.Reset(ctx))
		v, _ = loader.Get(ctx, "key", fn)
		require.Equal(t, 3, v)
	})

	t.Run("broken backend degrades to direct loads", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		require.NoError(t, c.Close())

		loader := cache.NewLoader[string](c, time.Minute, nil)
		v, err := loader.Get(ctx, "key", func(context.Context) (string, error) { return "direct", nil })
		require.NoError(t, err)
		require.Equal(t, "direct", v)
	})

	t.Run("deduplicates concurrent misses", func(t *testing.T) {
		t.Parallel()

		loader := cache.NewLoader[string](newMemory[string](t, newFakeClock()), time.Minute, nil)

		var calls atomic.Int32
		release := make(chan struct{})
		fn := func(context.Context) (string, error) {
			calls.Add(1)
			<-release
			return "value", nil
		}

		var wg sync.WaitGroup
		results := make([]string, 10)
		for i := range 10 {
			wg.Go(func() {
				results[i], _ = loader.Get(ctx, "key", fn)
			})
		}

		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		close(release)
		wg.Wait()

		require.Equal(t, int32(1), calls.Load())
		for _, r := range results {
			require.Equal(t, "value", r)
		}
	})
}
