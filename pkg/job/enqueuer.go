package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/sunday4k/sunday4k/pkg/logger"
)

// Dispatcher enqueues tasks by name. Enqueuer and Manager implement it.
type Dispatcher interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error
}

// Enqueuer inserts jobs without processing them. The API process uses it when
// workers run in a separate process.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// NewEnqueuer creates an insert-only River client.
func NewEnqueuer(pool *pgxpool.Pool, log *slog.Logger) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if log == nil {
		log = logger.NewNope()
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}

	return &Enqueuer{
		pool:   pool,
		client: client,
		logger: log,
	}, nil
}

// Enqueue inserts a job. It returns ErrDuplicate when a unique job was skipped.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	res, err := e.client.Insert(ctx, args, insertOpts)
	if err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}

	return e.inserted(ctx, name, args, res)
}

// EnqueueTx inserts a job inside tx; it becomes visible when tx commits.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	res, err := e.client.InsertTx(ctx, tx, args, insertOpts)
	if err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}

	return e.inserted(ctx, name, args, res)
}

func (e *Enqueuer) inserted(ctx context.Context, name string, args *taskArgs, res *rivertype.JobInsertResult) error {
	if res != nil && res.UniqueSkippedAsDuplicate {
		e.logger.DebugContext(ctx, "duplicate job skipped",
			slog.String("task", name),
			slog.String("unique_key", args.UniqueKey),
		)
		return fmt.Errorf("%w: %s %s", ErrDuplicate, name, args.UniqueKey)
	}
	return nil
}

// taskArgs is the single River argument type behind every named task.
// Only the river:"unique" fields take part in uniqueness, so payloads that
// differ in content still collide on the same key.
type taskArgs struct {
	TaskName  string          `json:"task_name" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string {
	return "sunday4k:task"
}

func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	args := &taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		args.Payload = raw
	}

	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	insertOpts := &river.InsertOpts{
		Queue:       cfg.queue,
		MaxAttempts: cfg.maxAttempts,
		Tags:        cfg.tags,
	}
	if cfg.scheduledAt != nil {
		insertOpts.ScheduledAt = *cfg.scheduledAt
	}
	if cfg.priority > 0 {
		insertOpts.Priority = cfg.priority
	}
	if cfg.uniqueFor > 0 {
		args.UniqueKey = cfg.uniqueKey
		insertOpts.UniqueOpts = river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: cfg.uniqueFor,
		}
	}

	return args, insertOpts, nil
}
