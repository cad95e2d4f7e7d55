package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates the subject rendered empty and no fallback was configured.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates the template has no body or the HTML rendered empty.
	ErrNoContent = errors.New("email must have HTML content")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrRenderFailed indicates markdown conversion or layout execution failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrUnknownFormat indicates a template body format other than html or markdown.
	ErrUnknownFormat = errors.New("unknown template format")
)
