package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/sunday4k/sunday4k/internal/email"
	"github.com/sunday4k/sunday4k/pkg/job"
	"github.com/sunday4k/sunday4k/pkg/mailer"
)

const (
	SendEmailTask = "send_email"
	EmailQueue    = "email"

	WelcomeTemplate     = "welcome"
	WeeklyQuoteTemplate = "weekly_quote"

	maxSendAttempts = 5
)

// SendEmailPayload is the JSON payload of a send_email job.
type SendEmailPayload struct {
	QuoteID    *uuid.UUID        `json:"quote_id,omitempty"`
	ResourceID *uuid.UUID        `json:"resource_id,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Template   string            `json:"template"`
	To         string            `json:"to"`
	FirstName  string            `json:"first_name,omitempty"`
}

// Sender delivers one email. *email.Service implements it.
type Sender interface {
	Send(ctx context.Context, req email.SendRequest) (*email.Result, error)
}

// SendEmail delivers queued emails.
type SendEmail struct {
	sender Sender
}

func NewSendEmail(sender Sender) *SendEmail {
	return &SendEmail{sender: sender}
}

func (t *SendEmail) Name() string { return SendEmailTask }

// Handle cancels jobs that can never succeed instead of retrying them.
func (t *SendEmail) Handle(ctx context.Context, p SendEmailPayload) error {
	_, err := t.sender.Send(ctx, email.SendRequest{
		Source: email.Source{
			Template:   p.Template,
			QuoteID:    p.QuoteID,
			ResourceID: p.ResourceID,
			FirstName:  p.FirstName,
		},
		To:   p.To,
		Tags: p.Tags,
	})
	if err != nil && permanent(err) {
		return river.JobCancel(err)
	}
	return err
}

func permanent(err error) bool {
	return errors.Is(err, email.ErrInvalidRequest) ||
		errors.Is(err, email.ErrTemplateNotFound) ||
		errors.Is(err, email.ErrQuoteNotFound) ||
		errors.Is(err, email.ErrResourceNotFound) ||
		errors.Is(err, mailer.ErrNoContent) ||
		errors.Is(err, mailer.ErrRenderFailed)
}

// SendOptions are the enqueue options for an ad-hoc send_email job.
func SendOptions() []job.EnqueueOption {
	return []job.EnqueueOption{
		job.InQueue(EmailQueue),
		job.MaxAttempts(maxSendAttempts),
	}
}

// Welcome returns the job for a new subscriber's welcome email. The unique key
// keeps repeated sign-ups within a day to one email.
func Welcome(to, firstName string) (SendEmailPayload, []job.EnqueueOption) {
	return SendEmailPayload{
			Template:  WelcomeTemplate,
			To:        to,
			FirstName: firstName,
			Tags:      map[string]string{"campaign": WelcomeTemplate},
		}, []job.EnqueueOption{
			job.InQueue(EmailQueue),
			job.MaxAttempts(maxSendAttempts),
			job.UniqueFor(24 * time.Hour),
			job.UniqueKey("welcome:" + to),
		}
}
