// Package redis opens the optional go-redis client shared by the render cache
// and the HTTP rate limiter.
//
// Configuration comes from REDIS_* environment variables (see Config). When
// REDIS_URL is empty, Open returns ErrEmptyConnectionURL and the service runs
// with in-memory implementations instead:
//
//	rdb, err := redis.Open(ctx, cfg.Redis, log)
//	switch {
//	case errors.Is(err, redis.ErrEmptyConnectionURL):
//		log.Info("redis disabled")
//	case err != nil:
//		return err
//	}
//	defer redis.Shutdown(rdb)(ctx)
//
// Open pings the server and retries with a linearly growing delay
// (RetryInterval, 2*RetryInterval, ...), logging every failed attempt.
package redis
