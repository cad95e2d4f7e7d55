// Package job runs Sunday4K background work on River, a Postgres-backed queue.
//
// Every task is stored under the single River kind "sunday4k:task" with its name
// and JSON payload, so adding a task needs no River-specific types:
//
//	type SendEmail struct{ svc *email.Service }
//
//	func (t *SendEmail) Name() string { return "send_email" }
//	func (t *SendEmail) Handle(ctx context.Context, p SendEmailPayload) error {
//		return t.svc.Send(ctx, p.Request())
//	}
//
//	m, err := job.NewManager(pool,
//		job.WithLogger(log),
//		job.WithQueue("email", cfg.Jobs.EmailWorkers),
//		job.WithTask(tasks.NewSendEmail(svc)),
//		job.WithScheduledTask(tasks.NewWeeklyQuote(repo, m)),
//	)
//
// Scheduled tasks use five-field cron expressions parsed by robfig/cron.
//
// Enqueue options cover queue selection, delays, retries, priority and
// deduplication. UniqueFor with UniqueKey skips inserts whose task name and key
// were already queued within the window; such inserts return ErrDuplicate.
//
// River keeps its queue in its own tables; Migrate creates them and is run by
// "sunday4k migrate up" after the application schema.
//
// Worker contexts carry the River job ID, so logs written with a logger built
// from logger.DefaultExtractors include job_id.
package job
