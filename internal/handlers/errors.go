package handlers

import (
	"errors"
	"net/http"

	"github.com/sunday4k/sunday4k/internal/email"
	"github.com/sunday4k/sunday4k/internal/httpx"
	"github.com/sunday4k/sunday4k/internal/repository"
	"github.com/sunday4k/sunday4k/pkg/job"
	"github.com/sunday4k/sunday4k/pkg/mailer"
)

// MapError translates domain errors into HTTP errors. Messages of client
// errors are passed through; anything unrecognized is left to the 500 path.
func MapError(err error) *httpx.Error {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, email.ErrTemplateNotFound),
		errors.Is(err, email.ErrQuoteNotFound),
		errors.Is(err, email.ErrResourceNotFound):
		return httpx.ErrNotFound(err.Error(), err)

	case errors.Is(err, repository.ErrSystemVariable),
		errors.Is(err, job.ErrDuplicate):
		return httpx.ErrConflict(err.Error(), err)

	case errors.Is(err, email.ErrInvalidRequest),
		errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, mailer.ErrNoContent),
		errors.Is(err, mailer.ErrNoRecipient),
		errors.Is(err, mailer.ErrUnknownFormat),
		errors.Is(err, mailer.ErrRenderFailed):
		return httpx.ErrUnprocessable(err.Error(), err)

	case errors.Is(err, mailer.ErrSendFailed):
		return httpx.NewError(http.StatusBadGateway, "email provider rejected the message", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
