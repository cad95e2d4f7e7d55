package mailer

import (
	"context"
	"errors"

	"github.com/sunday4k/sunday4k/pkg/interpolate"
)

// Mailer provides high-level email sending with template rendering.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
}

// New creates a new Mailer with the given sender and renderer.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{
		sender:   sender,
		renderer: renderer,
		config:   cfg,
	}
}

// SendParams contains parameters for sending a templated email.
type SendParams struct {
	Template  *Template              // Template to render (required)
	Context   interpolate.Context    // Render context
	Variables []interpolate.Variable // Variable catalog (data types, defaults)
	To        string                 // Single recipient

	// Optional overrides
	Subject     string            // Override template subject (still interpolated)
	Layout      string            // Override template and default layout
	From        string            // Override default sender
	ReplyTo     string            // Reply-to address
	CC          []string          // Carbon copy
	BCC         []string          // Blind carbon copy
	Tags        Tags              // Provider tags, merged with template tags
	Headers     map[string]string // Custom headers
	Attachments []Attachment      // File attachments
}

// Compose renders a template into an Email without sending it.
// Subject resolution: params.Subject > template subject > config fallback.
// Layout resolution: params.Layout > template layout > config default.
func (m *Mailer) Compose(params SendParams) (*Email, *RenderResult, error) {
	if params.To == "" {
		return nil, nil, ErrNoRecipient
	}
	if params.Template == nil {
		return nil, nil, ErrNoContent
	}

	tpl := *params.Template
	if params.Subject != "" {
		tpl.Subject = params.Subject
	}

	layout := params.Layout
	if layout == "" {
		layout = tpl.Layout
	}
	if layout == "" {
		layout = m.config.DefaultLayout
	}

	result, err := m.renderer.Render(layout, &tpl, params.Context, params.Variables)
	if err != nil {
		return nil, nil, errors.Join(ErrRenderFailed, err)
	}

	if result.Subject == "" {
		result.Subject = m.config.FallbackSubject
	}

	replyTo := params.ReplyTo
	if replyTo == "" {
		replyTo = m.config.ReplyTo
	}

	email := &Email{
		To:          []string{params.To},
		Subject:     result.Subject,
		HTML:        result.HTML,
		Text:        result.Text,
		From:        params.From,
		ReplyTo:     replyTo,
		CC:          params.CC,
		BCC:         params.BCC,
		Headers:     params.Headers,
		Tags:        mergeTags(tpl.Tags, params.Tags),
		Attachments: params.Attachments,
	}

	return email, result, nil
}

// Send renders a template and sends an email.
func (m *Mailer) Send(ctx context.Context, params SendParams) (*Email, error) {
	email, _, err := m.Compose(params)
	if err != nil {
		return nil, err
	}
	if err := m.SendRaw(ctx, email); err != nil {
		return email, err
	}
	return email, nil
}

// SendRaw sends a pre-built email without template rendering.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	if err := email.Validate(); err != nil {
		return err
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	return nil
}

func mergeTags(names []string, extra Tags) Tags {
	if len(names) == 0 && len(extra) == 0 {
		return nil
	}
	tags := SimpleTags(names...)
	for k, v := range extra {
		tags[k] = v
	}
	return tags
}
