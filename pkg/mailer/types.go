package mailer

import (
	"context"
	"fmt"
	"strings"
)

// Sender is implemented by email providers.
// It receives a fully prepared Email and only handles delivery.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Tags are provider tags attached to a message. A struct{}{} value marks a
// presence-only tag; providers that need name/value pairs send it as "true".
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email represents a fully-prepared email message ready for sending.
type Email struct {
	Headers     map[string]string // Custom headers
	Tags        Tags              // Provider-specific tags/categories
	Subject     string            // Email subject
	HTML        string            // HTML body content
	Text        string            // Plain text alternative
	From        string            // Override default sender (if provider allows)
	ReplyTo     string            // Reply-to address
	To          []string          // Recipients (at least one required)
	CC          []string          // Carbon copy recipients
	BCC         []string          // Blind carbon copy recipients
	Attachments []Attachment      // File attachments
}

// Validate checks the fields every provider requires.
func (e *Email) Validate() error {
	if e == nil || len(e.To) == 0 || strings.TrimSpace(e.To[0]) == "" {
		return ErrNoRecipient
	}
	if strings.TrimSpace(e.Subject) == "" {
		return ErrNoSubject
	}
	if strings.TrimSpace(e.HTML) == "" {
		return ErrNoContent
	}
	return nil
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	ContentID   string // Optional Content-ID for inline attachments
	Content     []byte // Raw file content
}
