// Package server hosts the HTTP API: the process runtime with graceful
// shutdown and the chi middlewares every route shares.
//
//	err := server.Run(ctx, router,
//		server.Address(cfg.App.Address),
//		server.StartupHook(jobs.Start),
//		server.ShutdownHook(jobs.Shutdown()),
//		server.ShutdownHook(db.Shutdown(pool)),
//	)
package server
