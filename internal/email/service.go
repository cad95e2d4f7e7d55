// Package email renders stored templates against quotes, resources and
// subscribers, and delivers them through the mailer.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunday4k/sunday4k/internal/content"
	"github.com/sunday4k/sunday4k/internal/repository"
	"github.com/sunday4k/sunday4k/pkg/cache"
	"github.com/sunday4k/sunday4k/pkg/interpolate"
	"github.com/sunday4k/sunday4k/pkg/logger"
	"github.com/sunday4k/sunday4k/pkg/mailer"
	"github.com/sunday4k/sunday4k/pkg/storage"
)

// Store is the persistence the service needs. *repository.Repository implements it.
type Store interface {
	ListActiveVariables(ctx context.Context) ([]interpolate.Variable, error)
	GetTemplate(ctx context.Context, name string) (*mailer.Template, error)
	GetQuote(ctx context.Context, id uuid.UUID) (*content.Quote, error)
	GetResource(ctx context.Context, id uuid.UUID) (*content.Resource, error)
	GetSubscriber(ctx context.Context, email string) (*repository.Subscriber, error)
	CreateEmailLog(ctx context.Context, l *repository.EmailLog) error
	MarkEmailLog(ctx context.Context, id uuid.UUID, res repository.EmailResult) error
}

const catalogKey = "catalog:active"

// Service renders and sends emails.
type Service struct {
	store     Store
	mailer    *mailer.Mailer
	builder   *content.Builder
	archive   storage.Storage
	catalog   *cache.Loader[[]interpolate.Variable]
	templates *cache.Loader[mailer.Template]
	log       *slog.Logger
	now       func() time.Time

	catalogCache  cache.Cache[[]interpolate.Variable]
	templateCache cache.Cache[mailer.Template]
	cacheTTL      time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithArchive stores every sent HTML body in s.
func WithArchive(s storage.Storage) Option {
	return func(svc *Service) {
		svc.archive = s
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// WithCaches replaces the in-memory catalog and template caches. A zero ttl
// uses each cache's default.
func WithCaches(catalog cache.Cache[[]interpolate.Variable], templates cache.Cache[mailer.Template], ttl time.Duration) Option {
	return func(svc *Service) {
		svc.catalogCache = catalog
		svc.templateCache = templates
		svc.cacheTTL = ttl
	}
}

// WithClock replaces time.Now for archive keys.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

// NewService creates a Service. Without WithCaches, lookups are cached in
// memory for a minute.
func NewService(store Store, m *mailer.Mailer, b *content.Builder, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		mailer:  m,
		builder: b,
		log:     logger.NewNope(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.catalogCache == nil {
		svc.catalogCache = cache.NewMemory[[]interpolate.Variable](cache.WithDefaultTTL(time.Minute))
	}
	if svc.templateCache == nil {
		svc.templateCache = cache.NewMemory[mailer.Template](cache.WithDefaultTTL(time.Minute), cache.WithMaxEntries(100))
	}
	svc.catalog = cache.NewLoader(svc.catalogCache, svc.cacheTTL, svc.log)
	svc.templates = cache.NewLoader(svc.templateCache, svc.cacheTTL, svc.log)
	return svc
}

// Close releases the caches.
func (s *Service) Close() error {
	return errors.Join(s.catalogCache.Close(), s.templateCache.Close())
}

// Preview renders req without sending or logging anything.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*Preview, error) {
	to := strings.TrimSpace(req.To)
	if to != "" {
		addr, err := ValidateAddress(to)
		if err != nil {
			return nil, err
		}
		to = addr
	}

	// Previews without a recipient still need one to compose.
	composeTo := to
	if composeTo == "" {
		composeTo = "preview@localhost"
	}

	p, err := s.prepare(ctx, req.Source, to)
	if err != nil {
		return nil, err
	}
	p.params.To = composeTo

	email, _, err := s.mailer.Compose(p.params)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Subject:          email.Subject,
		HTML:             email.HTML,
		Text:             email.Text,
		UnknownVariables: unknownVariables(p.params.Template, p.params.Variables),
	}, nil
}

// Send renders req, logs the attempt, archives the HTML body and delivers it.
// A failed archive upload is logged and does not stop delivery.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Result, error) {
	to, err := ValidateAddress(req.To)
	if err != nil {
		return nil, err
	}

	p, err := s.prepare(ctx, req.Source, to)
	if err != nil {
		return nil, err
	}
	p.params.To = to
	p.params.Tags = mailer.Tags{}
	for k, v := range req.Tags {
		p.params.Tags[k] = v
	}
	if unsub, ok := interpolate.Resolve(p.params.Context, "system.unsubscribe_url"); ok {
		p.params.Headers = map[string]string{"List-Unsubscribe": fmt.Sprintf("<%v>", unsub)}
	}

	email, _, err := s.mailer.Compose(p.params)
	if err != nil {
		return nil, err
	}

	entry := &repository.EmailLog{
		TemplateName: p.params.Template.Name,
		Recipient:    to,
		Subject:      email.Subject,
		QuoteID:      req.QuoteID,
		ResourceID:   req.ResourceID,
	}
	if err := s.store.CreateEmailLog(ctx, entry); err != nil {
		return nil, err
	}

	l := s.log.With(
		slog.String("template", entry.TemplateName),
		slog.String("to", to),
		slog.String("email_log_id", entry.ID.String()),
	)

	result := &Result{LogID: entry.ID, Subject: email.Subject}
	outcome := repository.EmailResult{Status: repository.EmailSent}
	if s.archive != nil {
		outcome.ArchiveKey, outcome.ArchiveURL = s.archiveBody(ctx, l, entry.ID, email.HTML)
		result.ArchiveURL = outcome.ArchiveURL
	}

	sendErr := s.mailer.SendRaw(ctx, email)
	if sendErr != nil {
		outcome.Status = repository.EmailFailed
		outcome.ProviderError = sendErr.Error()
	}

	if err := s.store.MarkEmailLog(ctx, entry.ID, outcome); err != nil {
		l.ErrorContext(ctx, "failed to record email outcome", logger.Error(err))
	}

	if sendErr != nil {
		l.ErrorContext(ctx, "email delivery failed", logger.Error(sendErr))
		return result, sendErr
	}

	l.InfoContext(ctx, "email sent", slog.String("subject", email.Subject))
	return result, nil
}

// InvalidateCatalog drops the cached variable catalog.
func (s *Service) InvalidateCatalog(ctx context.Context) error {
	return s.catalog.Invalidate(ctx, catalogKey)
}

// InvalidateTemplate drops one cached template.
func (s *Service) InvalidateTemplate(ctx context.Context, name string) error {
	return s.templates.Invalidate(ctx, templateKey(name))
}

func (s *Service) archiveBody(ctx context.Context, l *slog.Logger, id uuid.UUID, html string) (string, string) {
	key := storage.ArchiveKey(s.now(), id)
	if _, err := s.archive.Put(ctx, key, []byte(html)); err != nil {
		l.WarnContext(ctx, "failed to archive email", logger.Error(err))
		return "", ""
	}

	url, err := s.archive.URL(ctx, key)
	if err != nil {
		l.WarnContext(ctx, "failed to build archive url", logger.Error(err))
	}
	return key, url
}

type prepared struct {
	params mailer.SendParams
}

// prepare loads everything a render needs and builds the context. to may be empty.
func (s *Service) prepare(ctx context.Context, src Source, to string) (*prepared, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}

	tpl, err := s.template(ctx, src)
	if err != nil {
		return nil, err
	}

	vars, err := s.catalog.Get(ctx, catalogKey, s.store.ListActiveVariables)
	if err != nil {
		return nil, fmt.Errorf("load variable catalog: %w", err)
	}

	in := content.Input{Email: to, FirstName: strings.TrimSpace(src.FirstName)}

	if src.QuoteID != nil {
		if in.Quote, err = s.store.GetQuote(ctx, *src.QuoteID); err != nil {
			return nil, notFoundAs(err, ErrQuoteNotFound)
		}
	}
	if src.ResourceID != nil {
		if in.Resource, err = s.store.GetResource(ctx, *src.ResourceID); err != nil {
			return nil, notFoundAs(err, ErrResourceNotFound)
		}
	}

	if in.FirstName == "" && to != "" {
		sub, err := s.store.GetSubscriber(ctx, to)
		switch {
		case err == nil:
			in.FirstName = sub.FirstName
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	return &prepared{params: mailer.SendParams{
		Template:  tpl,
		Context:   s.builder.BuildInput(in),
		Variables: vars,
		Layout:    src.Layout,
	}}, nil
}

func (s *Service) template(ctx context.Context, src Source) (*mailer.Template, error) {
	if strings.TrimSpace(src.Body) != "" {
		format := src.Format
		if format == "" {
			format = mailer.FormatMarkdown
		}
		return &mailer.Template{
			Name:      "inline",
			Subject:   src.Subject,
			Preheader: src.Preheader,
			Body:      src.Body,
			Format:    format,
		}, nil
	}

	name := strings.TrimSpace(src.Template)
	tpl, err := s.templates.Get(ctx, templateKey(name), func(ctx context.Context) (mailer.Template, error) {
		t, err := s.store.GetTemplate(ctx, name)
		if err != nil {
			return mailer.Template{}, err
		}
		return *t, nil
	})
	if err != nil {
		return nil, notFoundAs(err, ErrTemplateNotFound)
	}

	if src.Subject != "" {
		tpl.Subject = src.Subject
	}
	return &tpl, nil
}

func templateKey(name string) string {
	return "template:" + name
}

func notFoundAs(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errors.Join(target, err)
	}
	return err
}

// unknownVariables lists referenced paths that have no catalog entry.
func unknownVariables(tpl *mailer.Template, vars []interpolate.Variable) []string {
	idx := interpolate.Index(vars)
	unknown := []string{}
	for _, text := range []string{tpl.Subject, tpl.Preheader, tpl.Body} {
		for _, path := range interpolate.Tokens(text) {
			if _, ok := idx[path]; !ok && !slices.Contains(unknown, path) {
				unknown = append(unknown, path)
			}
		}
	}
	slices.Sort(unknown)
	return unknown
}
