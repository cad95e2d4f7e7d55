package handlers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sunday4k/sunday4k/internal/repository"
	"github.com/sunday4k/sunday4k/internal/tasks"
	"github.com/sunday4k/sunday4k/pkg/db"
	"github.com/sunday4k/sunday4k/pkg/job"
)

// TxEnqueuer inserts jobs inside a caller's transaction. *job.Manager implements it.
type TxEnqueuer interface {
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error
}

// Subscriptions stores a subscriber and queues their welcome email in one
// transaction, so a sign-up never exists without its welcome job.
type Subscriptions struct {
	pool db.TxBeginner
	jobs TxEnqueuer
}

func NewSubscriptions(pool db.TxBeginner, jobs TxEnqueuer) *Subscriptions {
	return &Subscriptions{pool: pool, jobs: jobs}
}

// Subscribe upserts the subscriber and enqueues the welcome email. A welcome
// already queued for the address within the unique window is not repeated.
func (s *Subscriptions) Subscribe(ctx context.Context, addr, firstName string) (*repository.Subscriber, error) {
	var sub *repository.Subscriber

	err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx, repo *repository.Repository) error {
		var err error
		sub, err = repo.UpsertSubscriber(ctx, addr, firstName)
		if err != nil {
			return err
		}

		payload, opts := tasks.Welcome(sub.Email, sub.FirstName)
		if err := s.jobs.EnqueueTx(ctx, tx, tasks.SendEmailTask, payload, opts...); err != nil && !errors.Is(err, job.ErrDuplicate) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
