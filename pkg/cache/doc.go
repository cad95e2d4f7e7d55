// Package cache provides the read-through caches in front of the template
// variable catalog and stored email templates.
//
// New picks the backend: Redis when a client is configured, otherwise an
// in-memory LRU. Loader adds singleflight deduplication so a burst of renders
// after an invalidation hits Postgres once:
//
//	catalog := cache.NewLoader(cache.New[[]interpolate.Variable](cfg.Cache, rdb, "catalog"), 0, log)
//	vars, err := catalog.Get(ctx, "active", func(ctx context.Context) ([]interpolate.Variable, error) {
//		return repo.ListActiveVariables(ctx)
//	})
//
// Admin writes call Loader.Invalidate or Loader.Reset.
package cache
