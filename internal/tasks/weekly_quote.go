package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sunday4k/sunday4k/internal/content"
	"github.com/sunday4k/sunday4k/internal/repository"
	"github.com/sunday4k/sunday4k/pkg/job"
	"github.com/sunday4k/sunday4k/pkg/logger"
)

const (
	WeeklyQuoteTask = "weekly_quote"
	// Sundays at 09:00 UTC.
	WeeklyQuoteSchedule = "0 9 * * 0"
)

// SubscriberStore is what the weekly fan-out reads. *repository.Repository implements it.
type SubscriberStore interface {
	NextQuote(ctx context.Context) (*content.Quote, error)
	QuoteDisplayedSince(ctx context.Context, since time.Time) (*content.Quote, error)
	ListActiveSubscribers(ctx context.Context) ([]repository.Subscriber, error)
}

// WeeklyQuote sends the quote of the week to every active subscriber.
type WeeklyQuote struct {
	store      SubscriberStore
	dispatcher job.Dispatcher
	log        *slog.Logger
	now        func() time.Time
}

func NewWeeklyQuote(store SubscriberStore, d job.Dispatcher, log *slog.Logger) *WeeklyQuote {
	if log == nil {
		log = logger.NewNope()
	}
	return &WeeklyQuote{store: store, dispatcher: d, log: log, now: time.Now}
}

func (t *WeeklyQuote) Name() string     { return WeeklyQuoteTask }
func (t *WeeklyQuote) Schedule() string { return WeeklyQuoteSchedule }

func (t *WeeklyQuote) Handle(ctx context.Context) error {
	now := t.now().UTC()
	quote, err := t.pickQuote(ctx, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	if errors.Is(err, repository.ErrNotFound) {
		t.log.WarnContext(ctx, "weekly quote skipped: no active quotes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("pick weekly quote: %w", err)
	}

	subs, err := t.store.ListActiveSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	date := now.Format(time.DateOnly)
	var (
		queued, skipped int
		errs            []error
	)
	for _, sub := range subs {
		err := t.dispatcher.Enqueue(ctx, SendEmailTask, SendEmailPayload{
			Template:  WeeklyQuoteTemplate,
			To:        sub.Email,
			FirstName: sub.FirstName,
			QuoteID:   &quote.ID,
			Tags:      map[string]string{"campaign": WeeklyQuoteTemplate},
		},
			job.InQueue(EmailQueue),
			job.MaxAttempts(maxSendAttempts),
			job.UniqueFor(7*24*time.Hour),
			job.UniqueKey(WeeklyKey(sub.Email, date)),
		)
		switch {
		case errors.Is(err, job.ErrDuplicate):
			skipped++
		case err != nil:
			errs = append(errs, fmt.Errorf("enqueue %s: %w", sub.Email, err))
		default:
			queued++
		}
	}

	t.log.InfoContext(ctx, "weekly quote fanned out",
		slog.String("quote_id", quote.ID.String()),
		slog.Int("queued", queued),
		slog.Int("skipped", skipped),
		slog.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

// pickQuote returns the quote already picked on day, so a retried run sends
// the same quote, and advances the rotation only on the first attempt.
func (t *WeeklyQuote) pickQuote(ctx context.Context, day time.Time) (*content.Quote, error) {
	quote, err := t.store.QuoteDisplayedSince(ctx, day)
	if err == nil {
		t.log.DebugContext(ctx, "weekly quote reused", slog.String("quote_id", quote.ID.String()))
		return quote, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return t.store.NextQuote(ctx)
}

// WeeklyKey is the deduplication key of one weekly email.
func WeeklyKey(email, date string) string {
	return "weekly_quote:" + email + ":" + date
}
