package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/sunday4k/sunday4k/internal/config"
	"github.com/sunday4k/sunday4k/internal/db/migrations"
	"github.com/sunday4k/sunday4k/pkg/db"
	"github.com/sunday4k/sunday4k/pkg/job"
	"github.com/sunday4k/sunday4k/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations, including the job queue tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, cfg *config.Config, log *slog.Logger, pool *pgxpool.Pool) error {
			if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
				return err
			}
			if err := job.Migrate(ctx, pool, log); err != nil {
				return err
			}
			return logVersion(ctx, cfg, log, pool)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, cfg *config.Config, log *slog.Logger, pool *pgxpool.Pool) error {
			if err := db.Rollback(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
				return err
			}
			return logVersion(ctx, cfg, log, pool)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPool(cmd.Context(), logVersion)
	},
}

func logVersion(ctx context.Context, cfg *config.Config, log *slog.Logger, pool *pgxpool.Pool) error {
	v, err := db.Version(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "schema version", slog.Int64("version", v))
	return nil
}

// withPool loads the configuration and runs fn with a connected pool that is
// closed afterwards.
func withPool(ctx context.Context, fn func(context.Context, *config.Config, *slog.Logger, *pgxpool.Pool) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.FlushSentry(sentryFlushTimeout)

	pool, err := db.Connect(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, cfg, log, pool)
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
