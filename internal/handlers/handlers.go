package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sunday4k/sunday4k/internal/email"
	"github.com/sunday4k/sunday4k/internal/httpx"
	"github.com/sunday4k/sunday4k/internal/repository"
	"github.com/sunday4k/sunday4k/internal/server"
	"github.com/sunday4k/sunday4k/pkg/health"
	"github.com/sunday4k/sunday4k/pkg/interpolate"
	"github.com/sunday4k/sunday4k/pkg/job"
	"github.com/sunday4k/sunday4k/pkg/logger"
	"github.com/sunday4k/sunday4k/pkg/mailer"
	"github.com/sunday4k/sunday4k/pkg/ratelimit"
)

// Emails renders and delivers emails. *email.Service implements it.
type Emails interface {
	Preview(ctx context.Context, req email.PreviewRequest) (*email.Preview, error)
	Send(ctx context.Context, req email.SendRequest) (*email.Result, error)
	InvalidateCatalog(ctx context.Context) error
	InvalidateTemplate(ctx context.Context, name string) error
}

// Store is the admin side of the database. *repository.Repository implements it.
type Store interface {
	ListVariables(ctx context.Context) ([]interpolate.Variable, error)
	UpsertVariable(ctx context.Context, v interpolate.Variable) (interpolate.Variable, error)
	DeleteVariable(ctx context.Context, name string) error
	ListTemplates(ctx context.Context) ([]mailer.Template, error)
	GetTemplate(ctx context.Context, name string) (*mailer.Template, error)
	UpsertTemplate(ctx context.Context, t mailer.Template) (*mailer.Template, error)
	DeleteTemplate(ctx context.Context, name string) error
	ListEmailLogs(ctx context.Context, recipient string, limit int) ([]repository.EmailLog, error)
	Unsubscribe(ctx context.Context, email string) error
}

// Subscriber signs up weekly quote recipients. *Subscriptions implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, addr, firstName string) (*repository.Subscriber, error)
}

// Config wires the router. Emails, Store, Subscriptions and Jobs are required.
// Nil limiters disable the matching rate limit.
type Config struct {
	Emails        Emails
	Store         Store
	Subscriptions Subscriber
	Jobs          job.Dispatcher

	SendLimiter      ratelimit.Limiter
	SubscribeLimiter ratelimit.Limiter

	// Checks backs /health/ready; names in OptionalChecks only degrade it.
	Checks         health.Checks
	OptionalChecks []string

	Logger         *slog.Logger
	RequestTimeout time.Duration
}

type handler struct {
	emails Emails
	store  Store
	subs   Subscriber
	jobs   job.Dispatcher
	log    *slog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNope()
	}

	h := &handler{
		emails: cfg.Emails,
		store:  cfg.Store,
		subs:   cfg.Subscriptions,
		jobs:   cfg.Jobs,
		log:    log,
	}

	eh := httpx.JSONErrorHandler(log, MapError)
	wrap := func(fn httpx.HandlerFunc) http.HandlerFunc { return httpx.Wrap(fn, eh) }

	r := chi.NewRouter()
	r.Use(server.RequestID)
	r.Use(server.AccessLog(log))
	r.Use(server.Recover(log, eh))

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(cfg.Checks,
		health.WithLogger(log),
		health.WithOptional(cfg.OptionalChecks...),
	))

	sendLimit := limit(cfg.SendLimiter, ratelimit.ByJSONField("to"), "send", log, eh)
	subscribeLimit := limit(cfg.SubscribeLimiter, ratelimit.ByIP, "subscribe", log, eh)

	r.Route("/api", func(r chi.Router) {
		r.Use(server.Timeout(cfg.RequestTimeout))

		r.Route("/emails", func(r chi.Router) {
			r.Post("/preview", wrap(h.previewEmail))
			r.With(sendLimit).Post("/send", wrap(h.sendEmail))
			r.With(sendLimit).Post("/test", wrap(h.testEmail))
		})

		r.Get("/email-logs", wrap(h.listEmailLogs))

		r.Route("/template-variables", func(r chi.Router) {
			r.Get("/", wrap(h.listVariables))
			r.Put("/{name}", wrap(h.putVariable))
			r.Delete("/{name}", wrap(h.deleteVariable))
		})

		r.Route("/email-templates", func(r chi.Router) {
			r.Get("/", wrap(h.listTemplates))
			r.Get("/{name}", wrap(h.getTemplate))
			r.Put("/{name}", wrap(h.putTemplate))
			r.Delete("/{name}", wrap(h.deleteTemplate))
		})

		r.Route("/subscribers", func(r chi.Router) {
			r.With(subscribeLimit).Post("/", wrap(h.subscribe))
			r.Post("/unsubscribe", wrap(h.unsubscribe))
		})
	})

	return r
}

// limit builds a rate-limit middleware whose 429 goes through the JSON
// error handler. A nil limiter yields a pass-through middleware.
func limit(l ratelimit.Limiter, key ratelimit.KeyFunc, scope string, log *slog.Logger, eh httpx.ErrorHandler) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.Middleware(l, key,
		ratelimit.WithScope(scope),
		ratelimit.WithLogger(log),
		ratelimit.WithDeniedHandler(func(w http.ResponseWriter, r *http.Request, _ ratelimit.Result) {
			eh(w, r, httpx.ErrTooManyRequests("too many requests, try again later", nil))
		}),
	)
}
