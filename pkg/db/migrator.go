package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its filesystem, logger and table name in package globals.
var gooseMu sync.Mutex

// Migrate applies all pending migrations found at the root of migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	return withGoose(pool, migrations, table, log, func(db *sql.DB) error {
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return errors.Join(ErrApplyMigrations, err)
		}
		return nil
	})
}

// Rollback reverts the most recently applied migration.
func Rollback(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	return withGoose(pool, migrations, table, log, func(db *sql.DB) error {
		if err := goose.DownContext(ctx, db, "."); err != nil {
			return errors.Join(ErrRollbackMigration, err)
		}
		return nil
	})
}

// Version returns the current schema version.
func Version(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) (int64, error) {
	var version int64
	err := withGoose(pool, migrations, table, log, func(db *sql.DB) error {
		v, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return errors.Join(ErrMigrationStatus, err)
		}
		version = v
		return nil
	})
	return version, err
}

func withGoose(pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger, fn func(*sql.DB) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	// Not closed: the *sql.DB shares the pool's connections.
	db := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	if table != "" {
		goose.SetTableName(table)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	return fn(db)
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	if g.log != nil {
		g.log.Info(fmt.Sprintf(format, args...))
	}
}

// Fatalf only logs; goose returns the error to the caller anyway.
func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	if g.log != nil {
		g.log.Error(fmt.Sprintf(format, args...))
	}
}
