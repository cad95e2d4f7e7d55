// Package health exposes liveness and readiness probes for the Sunday4K API.
//
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(rdb),
//	}, health.WithOptional("redis"), health.WithLogger(log)))
//
// Checks run in parallel under a shared timeout (5s by default). A failing
// required check answers 503; failing optional checks answer 200 with status
// "degraded". Add ?format=json or Accept: application/json for per-check details.
//
// Run executes the same checks outside HTTP, which the CLI uses before starting
// a worker.
package health
