package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sunday4k/sunday4k/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusDegraded indicates only optional checks failed.
	StatusDegraded = "degraded"
	// StatusUnhealthy indicates a required check failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc is the health check signature shared by db, redis and job packages.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Response represents a health check response.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check represents the status of a single health check.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
	Optional bool   `json:"optional,omitempty"`
}

type config struct {
	logger   *slog.Logger
	optional map[string]bool
	timeout  time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout for all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for error logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptional marks checks whose failure degrades the service without making it unready.
// The Redis cache is the usual example: renders fall back to Postgres without it.
func WithOptional(names ...string) Option {
	return func(c *config) {
		for _, n := range names {
			c.optional[n] = true
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout:  defaultTimeout,
		logger:   logger.NewNope(),
		optional: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes checks in parallel. The returned error wraps ErrCheckFailed
// (and ErrCheckTimeout for checks that ran out of time) when a required check failed.
func Run(ctx context.Context, checks Checks, opts ...Option) (*Response, error) {
	cfg := newConfig(opts...)
	resp := runChecks(ctx, checks, cfg)
	if resp.Status != StatusUnhealthy {
		return resp, nil
	}

	names := make([]string, 0, len(resp.Checks))
	for name, c := range resp.Checks {
		if c.Status == StatusUnhealthy && !c.Optional {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return resp, fmt.Errorf("%w: %v", ErrCheckFailed, names)
}

func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Check, len(checks))
	)

	for name, check := range checks {
		wg.Go(func() {
			start := time.Now()
			err := check(ctx)
			if err == nil && ctx.Err() != nil {
				err = ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				err = errors.Join(ErrCheckTimeout, err)
			}

			result := Check{
				Status:   StatusHealthy,
				Duration: time.Since(start).Round(time.Millisecond).String(),
				Optional: cfg.optional[name],
			}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Bool("optional", result.Optional),
					logger.Error(err),
				)
			}

			mu.Lock()
			results[name] = result
			mu.Unlock()
		})
	}

	wg.Wait()

	return &Response{
		Status: aggregate(results),
		Checks: results,
	}
}

func aggregate(results map[string]Check) string {
	status := StatusHealthy
	for _, c := range results {
		if c.Status != StatusUnhealthy {
			continue
		}
		if !c.Optional {
			return StatusUnhealthy
		}
		status = StatusDegraded
	}
	return status
}
