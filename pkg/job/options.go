package job

import (
	"context"
	"log/slog"
)

// Config holds worker settings read from JOBS_* variables.
type Config struct {
	MaxWorkers   int  `env:"JOBS_MAX_WORKERS" envDefault:"10"`
	EmailWorkers int  `env:"JOBS_EMAIL_WORKERS" envDefault:"5"`
	RunOnStart   bool `env:"JOBS_RUN_SCHEDULED_ON_START" envDefault:"false"`
}

type config struct {
	registry   *taskRegistry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []scheduleConfig
	maxWorkers int
	runOnStart bool
}

func newConfig() *config {
	return &config{
		registry: newTaskRegistry(),
		queues:   make(map[string]int),
	}
}

type scheduleConfig struct {
	handler  func(context.Context) error
	name     string
	schedule string
}

// Option configures the job manager.
type Option func(*config)

// WithTask registers a task whose payload type P is inferred from its Handle method.
//
//	type SendEmail struct{ svc *email.Service }
//
//	func (t *SendEmail) Name() string { return "send_email" }
//	func (t *SendEmail) Handle(ctx context.Context, p SendEmailPayload) error { ... }
//
//	job.WithTask(tasks.NewSendEmail(svc))
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), newTaskWrapper[P, T](task))
	}
}

// WithScheduledTask registers a periodic task. Schedule returns a five-field
// cron expression (minute hour day-of-month month day-of-week).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue adds a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for River and task execution.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count of the default queue. Default: 100.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithRunOnStart also runs scheduled tasks once when the manager starts.
func WithRunOnStart(enabled bool) Option {
	return func(c *config) {
		c.runOnStart = enabled
	}
}
