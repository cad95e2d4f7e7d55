package mailer

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is the markup language of a template body.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Valid reports whether f is a supported body format.
func (f Format) Valid() bool {
	return f == FormatHTML || f == FormatMarkdown
}

// Template is a stored email template. Subject, Preheader and Body may contain
// {{path}} placeholders and {{#if path}} blocks.
type Template struct {
	UpdatedAt   time.Time `json:"updated_at" yaml:"-" db:"updated_at"`
	Name        string    `json:"name" yaml:"name" db:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	Subject     string    `json:"subject" yaml:"subject" db:"subject"`
	Preheader   string    `json:"preheader,omitempty" yaml:"preheader,omitempty" db:"preheader"`
	Body        string    `json:"body" yaml:"-" db:"body"`
	Format      Format    `json:"format" yaml:"format" db:"format"`
	Layout      string    `json:"layout,omitempty" yaml:"layout,omitempty" db:"layout"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty" db:"tags"`
}

// ParseTemplate parses a template file: YAML frontmatter followed by the body.
// Without frontmatter the whole content is a markdown body.
// The format defaults to markdown.
func ParseTemplate(content []byte) (*Template, error) {
	delimiter := []byte("---")

	tmpl := &Template{Format: FormatMarkdown}

	if !bytes.HasPrefix(content, delimiter) {
		tmpl.Body = string(content)
		return tmpl, nil
	}

	afterFirst := bytes.TrimPrefix(content, delimiter)
	afterFirst = bytes.TrimLeft(afterFirst, "\n\r")

	if len(afterFirst) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	endIdx := bytes.Index(afterFirst, delimiter)
	if endIdx == -1 {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	frontmatter := afterFirst[:endIdx]
	bodyStart := endIdx + len(delimiter)
	// Skip one newline after the closing delimiter (\r\n or \n).
	if bodyStart < len(afterFirst) {
		if afterFirst[bodyStart] == '\r' && bodyStart+1 < len(afterFirst) && afterFirst[bodyStart+1] == '\n' {
			bodyStart += 2
		} else if afterFirst[bodyStart] == '\n' {
			bodyStart++
		}
	}

	if len(bytes.TrimSpace(frontmatter)) > 0 {
		if err := yaml.Unmarshal(frontmatter, tmpl); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	if tmpl.Format == "" {
		tmpl.Format = FormatMarkdown
	}
	if !tmpl.Format.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidFrontmatter, ErrUnknownFormat, tmpl.Format)
	}

	tmpl.Body = string(afterFirst[bodyStart:])
	return tmpl, nil
}
