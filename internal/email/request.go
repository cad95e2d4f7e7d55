package email

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/sunday4k/sunday4k/pkg/mailer"
)

// Source selects the template and the records an email is rendered from.
// Either Template names a stored template or Body carries an inline one.
type Source struct {
	QuoteID    *uuid.UUID    `json:"quote_id,omitempty"`
	ResourceID *uuid.UUID    `json:"resource_id,omitempty"`
	Template   string        `json:"template,omitempty"`
	Subject    string        `json:"subject,omitempty"`
	Preheader  string        `json:"preheader,omitempty"`
	Body       string        `json:"body,omitempty"`
	Format     mailer.Format `json:"format,omitempty"`
	Layout     string        `json:"layout,omitempty"`
	FirstName  string        `json:"first_name,omitempty"`
}

// PreviewRequest renders an email without sending it. To is optional and only
// fills the contact fields.
type PreviewRequest struct {
	Source
	To string `json:"to,omitempty"`
}

// SendRequest renders and delivers one email.
type SendRequest struct {
	Tags map[string]string `json:"tags,omitempty"`
	Source
	To string `json:"to"`
}

// Preview is a rendered email.
type Preview struct {
	Subject          string   `json:"subject"`
	HTML             string   `json:"html"`
	Text             string   `json:"text"`
	UnknownVariables []string `json:"unknown_variables"`
}

// Result describes a delivered email.
type Result struct {
	ArchiveURL string    `json:"archive_url,omitempty"`
	Subject    string    `json:"subject"`
	LogID      uuid.UUID `json:"log_id"`
}

func (s Source) validate() error {
	hasName := strings.TrimSpace(s.Template) != ""
	hasBody := strings.TrimSpace(s.Body) != ""
	switch {
	case !hasName && !hasBody:
		return fmt.Errorf("%w: template or body is required", ErrInvalidRequest)
	case hasName && hasBody:
		return fmt.Errorf("%w: template and body are mutually exclusive", ErrInvalidRequest)
	case s.Format != "" && !s.Format.Valid():
		return fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, s.Format)
	}
	return nil
}

// ValidateAddress checks that addr is a single bare address and returns it lowercased.
func ValidateAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("%w: recipient is required", ErrInvalidRequest)
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return "", fmt.Errorf("%w: invalid recipient %q", ErrInvalidRequest, addr)
	}
	return strings.ToLower(parsed.Address), nil
}
