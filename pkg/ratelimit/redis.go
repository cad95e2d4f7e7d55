package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The first hit of a window sets its expiry; the TTL then dates the reset.
var fixedWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Redis is a fixed-window limiter shared by every instance using the same server.
type Redis struct {
	client redis.Scripter
	now    func() time.Time
	prefix string
	limit  int
	period time.Duration
}

// NewRedis allows limit attempts per id in every period, with counters stored
// under "<prefix>:<id>".
func NewRedis(client redis.Scripter, limit int, period time.Duration, prefix string) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrInvalidConfig)
	}
	if err := validate(limit, period); err != nil {
		return nil, fmt.Errorf("%w: limit and window must be positive", err)
	}
	return &Redis{client: client, now: time.Now, prefix: prefix, limit: limit, period: period}, nil
}

func (r *Redis) Allow(ctx context.Context, id string) (Result, error) {
	vals, err := fixedWindow.Run(ctx, r.client, []string{r.key(id)}, r.period.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, errors.Join(ErrLimiterFailed, err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("%w: unexpected script reply %v", ErrLimiterFailed, vals)
	}

	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	res := Result{
		Limit:   r.limit,
		ResetAt: r.now().Add(ttl),
	}
	if count > r.limit {
		return res, nil
	}

	res.Allowed = true
	res.Remaining = r.limit - count
	return res, nil
}

func (r *Redis) key(id string) string {
	if r.prefix == "" {
		return id
	}
	return r.prefix + ":" + id
}

var _ Limiter = (*Redis)(nil)
