package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Subscriber is a recipient of the weekly quote.
type Subscriber struct {
	SubscribedAt   time.Time  `json:"subscribed_at" db:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty" db:"unsubscribed_at"`
	Email          string     `json:"email" db:"email"`
	FirstName      string     `json:"first_name,omitempty" db:"first_name"`
	ID             uuid.UUID  `json:"id" db:"id"`
	IsActive       bool       `json:"is_active" db:"is_active"`
}

const subscriberColumns = `id, email, first_name, is_active, subscribed_at, unsubscribed_at`

// UpsertSubscriber subscribes email, reactivating it if it unsubscribed before.
// A non-empty firstName replaces the stored one.
func (r *Repository) UpsertSubscriber(ctx context.Context, email, firstName string) (*Subscriber, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is empty", ErrInvalidInput)
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO subscribers (email, first_name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET
			first_name      = COALESCE(NULLIF(EXCLUDED.first_name, ''), subscribers.first_name),
			is_active       = TRUE,
			subscribed_at   = CASE WHEN subscribers.is_active THEN subscribers.subscribed_at ELSE now() END,
			unsubscribed_at = NULL
		RETURNING `+subscriberColumns,
		email, firstName,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscriber: %w", err)
	}
	s, err := collectOne[Subscriber](rows)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Unsubscribe deactivates email. Unsubscribing twice is not an error.
func (r *Repository) Unsubscribe(ctx context.Context, email string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE subscribers
		   SET is_active = FALSE,
		       unsubscribed_at = COALESCE(unsubscribed_at, now())
		 WHERE email = $1`, NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetSubscriber(ctx context.Context, email string) (*Subscriber, error) {
	rows, err := r.db.Query(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE email = $1`, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	s, err := collectOne[Subscriber](rows)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListActiveSubscribers(ctx context.Context) ([]Subscriber, error) {
	rows, err := r.db.Query(ctx, `SELECT `+subscriberColumns+` FROM subscribers
		WHERE is_active ORDER BY subscribed_at, email`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return collectAll[Subscriber](rows)
}
