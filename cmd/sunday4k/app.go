package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sunday4k/sunday4k/internal/config"
	"github.com/sunday4k/sunday4k/internal/content"
	"github.com/sunday4k/sunday4k/internal/email"
	"github.com/sunday4k/sunday4k/internal/handlers"
	"github.com/sunday4k/sunday4k/internal/repository"
	"github.com/sunday4k/sunday4k/internal/seed"
	"github.com/sunday4k/sunday4k/internal/server"
	"github.com/sunday4k/sunday4k/internal/tasks"
	"github.com/sunday4k/sunday4k/pkg/cache"
	"github.com/sunday4k/sunday4k/pkg/db"
	"github.com/sunday4k/sunday4k/pkg/health"
	"github.com/sunday4k/sunday4k/pkg/interpolate"
	"github.com/sunday4k/sunday4k/pkg/job"
	"github.com/sunday4k/sunday4k/pkg/logger"
	"github.com/sunday4k/sunday4k/pkg/mailer"
	"github.com/sunday4k/sunday4k/pkg/mailer/resend"
	"github.com/sunday4k/sunday4k/pkg/ratelimit"
	"github.com/sunday4k/sunday4k/pkg/redis"
	"github.com/sunday4k/sunday4k/pkg/storage"
)

const sentryFlushTimeout = 2 * time.Second

// app holds the process dependencies shared by the serve and worker commands.
type app struct {
	cfg  *config.Config
	log  *slog.Logger
	pool *pgxpool.Pool
	rdb  goredis.UniversalClient
	repo *repository.Repository

	emails   *email.Service
	enqueuer *job.Enqueuer
	manager  *job.Manager

	sendLimiter      ratelimit.Limiter
	subscribeLimiter ratelimit.Limiter

	closers []func(context.Context) error
}

// loadConfig reads the configuration and builds the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewWithSentry(cfg.Log, cfg.Sentry, logger.DefaultExtractors()...).
		With(slog.String("app", cfg.App.Name), slog.String("env", cfg.App.Env))
	return cfg, log, nil
}

// newApp connects every backing service. withWorkers builds the job manager
// with all tasks registered; without it only the enqueuer is available.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, withWorkers bool) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			_ = a.close(context.Background())
		}
	}()

	a.pool, err = db.Connect(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Shutdown(a.pool))
	a.repo = repository.New(a.pool)

	if cfg.Redis.Enabled() {
		a.rdb, err = redis.Open(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, redis.Shutdown(a.rdb))
	}

	if err := a.buildEmails(); err != nil {
		return nil, err
	}
	if err := a.buildLimiters(); err != nil {
		return nil, err
	}

	a.enqueuer, err = job.NewEnqueuer(a.pool, log)
	if err != nil {
		return nil, fmt.Errorf("create job enqueuer: %w", err)
	}

	if withWorkers {
		opts := tasks.Options(a.emails, a.repo, a.enqueuer, cfg.Jobs.EmailWorkers, log)
		opts = append(opts,
			job.WithLogger(log),
			job.WithMaxWorkers(cfg.Jobs.MaxWorkers),
			job.WithRunOnStart(cfg.Jobs.RunOnStart),
		)
		a.manager, err = job.NewManager(a.pool, opts...)
		if err != nil {
			return nil, fmt.Errorf("create job manager: %w", err)
		}
	}

	return a, nil
}

func (a *app) buildEmails() error {
	cfg := a.cfg

	interp := interpolate.NewRenderer(
		interpolate.WithFormatter(interpolate.NewFormatter(interpolate.WithLocale(cfg.LocaleFormat()))),
		interpolate.WithLogger(a.log),
	)
	renderer := mailer.NewRendererWithConfig(seed.Layouts, mailer.RendererConfig{Interpolator: interp})
	if cfg.Resend.APIKey == "" {
		a.log.Warn("RESEND_API_KEY is not set, provider calls will be rejected")
	}
	m := mailer.New(resend.New(cfg.Resend), renderer, cfg.Mailer)

	opts := []email.Option{
		email.WithLogger(a.log),
		email.WithCaches(
			cache.New[[]interpolate.Variable](cfg.Cache, a.rdb, "catalog"),
			cache.New[mailer.Template](cfg.Cache, a.rdb, "templates"),
			cfg.Cache.TTL,
		),
	}
	if cfg.Storage.Enabled() {
		archive, err := storage.New(cfg.Storage)
		if err != nil {
			return fmt.Errorf("create archive storage: %w", err)
		}
		opts = append(opts, email.WithArchive(archive))
	}

	a.emails = email.NewService(a.repo, m, content.NewBuilder(cfg.App.PublicURL), opts...)
	a.closers = append(a.closers, func(context.Context) error { return a.emails.Close() })
	return nil
}

// buildLimiters shares counters through Redis when it is configured and keeps
// them per process otherwise. A zero limit disables the corresponding limiter.
func (a *app) buildLimiters() error {
	rl := a.cfg.RateLimit

	build := func(limit int, window time.Duration, scope string) (ratelimit.Limiter, error) {
		if limit == 0 {
			return nil, nil
		}
		if a.rdb != nil {
			return ratelimit.NewRedis(a.rdb, limit, window, rl.Prefix+":"+scope)
		}
		mem := ratelimit.NewMemory(limit, window)
		a.closers = append(a.closers, func(context.Context) error { return mem.Close() })
		return mem, nil
	}

	var err error
	if a.sendLimiter, err = build(rl.SendPerRecipient, rl.SendWindow, "send"); err != nil {
		return fmt.Errorf("send limiter: %w", err)
	}
	if a.subscribeLimiter, err = build(rl.SubscribePerIP, rl.SubscribeWindow, "subscribe"); err != nil {
		return fmt.Errorf("subscribe limiter: %w", err)
	}
	return nil
}

// checks returns the readiness probes. Redis only degrades readiness since
// every Redis-backed component falls back to local state.
func (a *app) checks() (health.Checks, []string) {
	checks := health.Checks{"postgres": db.Healthcheck(a.pool)}
	var optional []string
	if a.rdb != nil {
		checks["redis"] = redis.Healthcheck(a.rdb)
		optional = append(optional, "redis")
	}
	if a.manager != nil {
		checks["jobs"] = job.Healthcheck(a.manager)
	}
	return checks, optional
}

func (a *app) handler() http.Handler {
	checks, optional := a.checks()
	return handlers.NewRouter(handlers.Config{
		Emails:           a.emails,
		Store:            a.repo,
		Subscriptions:    handlers.NewSubscriptions(a.pool, a.enqueuer),
		Jobs:             a.enqueuer,
		SendLimiter:      a.sendLimiter,
		SubscribeLimiter: a.subscribeLimiter,
		Checks:           checks,
		OptionalChecks:   optional,
		Logger:           a.log,
		RequestTimeout:   a.cfg.App.RequestTimeout,
	})
}

// serverOptions returns the hooks that start workers and release resources.
func (a *app) serverOptions() []server.Option {
	opts := []server.Option{
		server.Address(a.cfg.App.Address),
		server.Logger(a.log),
		server.ShutdownTimeout(a.cfg.App.ShutdownTimeout),
	}
	if a.manager != nil {
		opts = append(opts,
			server.StartupHook(a.manager.Start),
			server.ShutdownHook(a.manager.Shutdown()),
		)
	}
	return append(opts, server.ShutdownHook(a.close))
}

// close releases resources in reverse order of acquisition and flushes Sentry.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	logger.FlushSentry(sentryFlushTimeout)
	return errors.Join(errs...)
}
