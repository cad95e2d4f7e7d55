package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more attempt by id fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, id string) (Result, error)
}

// Result describes the state of id's window after the attempt.
type Result struct {
	ResetAt   time.Time
	Limit     int
	Remaining int
	Allowed   bool
}

// RetryAfter returns how long until the window resets, relative to now.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if d := r.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Config holds the limits applied by the HTTP API.
type Config struct {
	// SendPerRecipient caps send and test requests per recipient address.
	SendPerRecipient int           `env:"RATE_LIMIT_SEND" envDefault:"5"`
	SendWindow       time.Duration `env:"RATE_LIMIT_SEND_WINDOW" envDefault:"1h"`
	// SubscribePerIP caps subscription attempts per client IP.
	SubscribePerIP  int           `env:"RATE_LIMIT_SUBSCRIBE" envDefault:"10"`
	SubscribeWindow time.Duration `env:"RATE_LIMIT_SUBSCRIBE_WINDOW" envDefault:"1h"`
	Prefix          string        `env:"RATE_LIMIT_PREFIX" envDefault:"sunday4k:ratelimit"`
}

func validate(limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
