package ratelimit

import "errors"

var (
	ErrInvalidConfig = errors.New("ratelimit: invalid configuration")
	ErrLimiterFailed = errors.New("ratelimit: limiter failed")
	ErrNoKey         = errors.New("ratelimit: no key in request")
)
