package tasks

import (
	"log/slog"

	"github.com/sunday4k/sunday4k/pkg/job"
)

// Options registers every task with a job manager. emailWorkers sizes the email queue.
func Options(sender Sender, store SubscriberStore, d job.Dispatcher, emailWorkers int, log *slog.Logger) []job.Option {
	return []job.Option{
		job.WithQueue(EmailQueue, max(emailWorkers, 1)),
		job.WithTask[SendEmailPayload](NewSendEmail(sender)),
		job.WithScheduledTask(NewWeeklyQuote(store, d, log)),
	}
}
