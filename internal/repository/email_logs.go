package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmailStatus is the delivery state of a logged email.
type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

// EmailLog records one delivery attempt.
type EmailLog struct {
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	SentAt        *time.Time  `json:"sent_at,omitempty" db:"sent_at"`
	QuoteID       *uuid.UUID  `json:"quote_id,omitempty" db:"quote_id"`
	ResourceID    *uuid.UUID  `json:"resource_id,omitempty" db:"resource_id"`
	TemplateName  string      `json:"template_name" db:"template_name"`
	Recipient     string      `json:"recipient" db:"recipient"`
	Subject       string      `json:"subject" db:"subject"`
	Status        EmailStatus `json:"status" db:"status"`
	ProviderError string      `json:"provider_error,omitempty" db:"provider_error"`
	ArchiveKey    string      `json:"archive_key,omitempty" db:"archive_key"`
	ArchiveURL    string      `json:"archive_url,omitempty" db:"archive_url"`
	ID            uuid.UUID   `json:"id" db:"id"`
}

const emailLogColumns = `id, template_name, recipient, subject, status, provider_error,
	archive_key, archive_url, quote_id, resource_id, created_at, sent_at`

// CreateEmailLog inserts a pending log row. A zero ID is replaced with a new UUID.
func (r *Repository) CreateEmailLog(ctx context.Context, l *EmailLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = EmailPending
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO email_logs (id, template_name, recipient, subject, status, quote_id, resource_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		l.ID, l.TemplateName, NormalizeEmail(l.Recipient), l.Subject, l.Status, l.QuoteID, l.ResourceID,
	).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("create email log: %w", err)
	}
	return nil
}

// EmailResult is the outcome recorded by MarkEmailLog.
type EmailResult struct {
	Status        EmailStatus
	ProviderError string
	ArchiveKey    string
	ArchiveURL    string
}

// MarkEmailLog records the outcome of a delivery attempt.
func (r *Repository) MarkEmailLog(ctx context.Context, id uuid.UUID, res EmailResult) error {
	if res.Status != EmailSent && res.Status != EmailFailed {
		return fmt.Errorf("%w: cannot mark email %s", ErrInvalidInput, res.Status)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE email_logs
		   SET status = $2,
		       provider_error = $3,
		       archive_key = COALESCE(NULLIF($4, ''), archive_key),
		       archive_url = COALESCE(NULLIF($5, ''), archive_url),
		       sent_at = CASE WHEN $2 = 'sent' THEN now() ELSE sent_at END
		 WHERE id = $1`,
		id, res.Status, res.ProviderError, res.ArchiveKey, res.ArchiveURL,
	)
	if err != nil {
		return fmt.Errorf("mark email log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetEmailLog(ctx context.Context, id uuid.UUID) (*EmailLog, error) {
	rows, err := r.db.Query(ctx, `SELECT `+emailLogColumns+` FROM email_logs WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get email log: %w", err)
	}
	l, err := collectOne[EmailLog](rows)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListEmailLogs returns the newest logs, optionally for one recipient.
func (r *Repository) ListEmailLogs(ctx context.Context, recipient string, limit int) ([]EmailLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `SELECT `+emailLogColumns+` FROM email_logs
		WHERE $1 = '' OR recipient = $1
		ORDER BY created_at DESC
		LIMIT $2`, NormalizeEmail(recipient), limit)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	return collectAll[EmailLog](rows)
}
