// Package ratelimit counts attempts per identifier inside fixed time windows.
//
// A Limiter is an explicit value handed to whoever needs it; nothing is kept in
// package state. Memory holds an identifier to {count, windowStart} map guarded
// by a mutex and suits a single instance. Redis shares counters across instances.
//
//	limiter := ratelimit.NewMemory(5, time.Hour)
//	defer limiter.Close()
//
//	r.With(ratelimit.Middleware(limiter, ratelimit.ByJSONField("to"))).
//		Post("/api/emails/test", h)
//
// Denied requests get 429 with a Retry-After header. Limiter errors fail open:
// the request proceeds and the error is logged.
package ratelimit
