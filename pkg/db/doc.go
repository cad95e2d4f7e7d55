// Package db wraps pgxpool for the Sunday4K services.
//
// Connect parses DATABASE_* settings (see Config), retries the initial ping with
// a linear backoff and logs every failed attempt. Healthcheck and Shutdown plug
// into the health package and the server's shutdown hooks.
//
// Migrations are goose SQL files embedded in internal/db/migrations:
//
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Rollback and Version back the "migrate down" and "migrate status" commands.
//
// WithTx runs a function inside a transaction, rolling back on error or panic.
package db
