package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sunday4k/sunday4k/pkg/logger"
)

// Loader reads through a Cache, computing misses at most once per key at a time.
//
// Backend failures never fail a load: a broken Redis degrades to calling fn directly.
type Loader[V any] struct {
	cache Cache[V]
	log   *slog.Logger
	group singleflight.Group
	ttl   time.Duration
}

// NewLoader wraps c. A zero ttl uses the cache default.
func NewLoader[V any](c Cache[V], ttl time.Duration, log *slog.Logger) *Loader[V] {
	if log == nil {
		log = logger.NewNope()
	}
	return &Loader[V]{cache: c, ttl: ttl, log: log}
}

// Get returns the cached value for key or stores the result of fn.
// Errors from fn are returned and never cached.
func (l *Loader[V]) Get(ctx context.Context, key string, fn func(ctx context.Context) (V, error)) (V, error) {
	v, err := l.cache.Get(ctx, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		l.log.WarnContext(ctx, "cache read failed", slog.String("key", key), logger.Error(err))
	}

	res, err, _ := l.group.Do(key, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := l.cache.Set(ctx, key, val, l.ttl); err != nil {
			l.log.WarnContext(ctx, "cache write failed", slog.String("key", key), logger.Error(err))
		}
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return res.(V), nil
}

// Invalidate drops keys so the next Get reloads them.
func (l *Loader[V]) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		l.group.Forget(k)
	}
	return l.cache.Delete(ctx, keys...)
}

// Reset drops every cached entry.
func (l *Loader[V]) Reset(ctx context.Context) error {
	return l.cache.Clear(ctx)
}
