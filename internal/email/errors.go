package email

import "errors"

var (
	ErrInvalidRequest   = errors.New("email: invalid request")
	ErrTemplateNotFound = errors.New("email: template not found")
	ErrQuoteNotFound    = errors.New("email: quote not found")
	ErrResourceNotFound = errors.New("email: resource not found")
)
