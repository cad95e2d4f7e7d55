package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a generic key-value cache with TTL support.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL
//   - Negative: item never expires
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error
	Close() error
}

// Config selects the cache defaults for the API and workers.
type Config struct {
	TTL        time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	MaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"1000"`
	Prefix     string        `env:"CACHE_PREFIX" envDefault:"sunday4k"`
}

// New returns a Redis cache namespaced under cfg.Prefix and name when client is
// non-nil, and an in-memory LRU cache otherwise.
func New[V any](cfg Config, client redis.UniversalClient, name string) Cache[V] {
	if client != nil {
		prefix := name
		if cfg.Prefix != "" {
			prefix = cfg.Prefix + ":" + name
		}
		return NewRedis[V](client, prefix, cfg.TTL)
	}
	return NewMemory[V](WithDefaultTTL(cfg.TTL), WithMaxEntries(cfg.MaxEntries))
}

// Marshaler serializes values for byte-oriented backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}
