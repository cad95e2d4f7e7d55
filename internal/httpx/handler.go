package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sunday4k/sunday4k/pkg/logger"
)

// HandlerFunc is an HTTP handler that returns an error instead of writing it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler writes err to the client.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorMapper translates a domain error into an *Error.
// It returns nil when it does not recognize err.
type ErrorMapper func(err error) *Error

// Wrap adapts h to an http.HandlerFunc, sending returned errors to eh.
// Errors are dropped when h has already started the response.
func Wrap(h HandlerFunc, eh ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		if err := h(rw, r); err != nil {
			if rw.Written() {
				return
			}
			eh(rw, r, err)
		}
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// JSONErrorHandler returns an ErrorHandler that renders errors as
// {"error": message, "request_id": id}. Mappers are tried in order for errors
// that are not already an *Error; anything left unmapped becomes a 500.
// Server errors are logged with their cause, client errors at debug level.
func JSONErrorHandler(log *slog.Logger, mappers ...ErrorMapper) ErrorHandler {
	if log == nil {
		log = logger.NewNope()
	}

	return func(w http.ResponseWriter, r *http.Request, err error) {
		httpErr := resolve(err, mappers)

		if httpErr.Code >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), "request failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", httpErr.Code),
				logger.Error(err),
			)
		} else {
			log.DebugContext(r.Context(), "request rejected",
				slog.String("path", r.URL.Path),
				slog.Int("status", httpErr.Code),
				logger.Error(err),
			)
		}

		_ = JSON(w, httpErr.Code, errorBody{
			Error:     httpErr.Message,
			RequestID: logger.RequestID(r.Context()),
		})
	}
}

func resolve(err error, mappers []ErrorMapper) *Error {
	if httpErr := AsError(err); httpErr != nil {
		return httpErr
	}
	for _, m := range mappers {
		if httpErr := m(err); httpErr != nil {
			return httpErr
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(http.StatusGatewayTimeout, "request timed out", err)
	case errors.Is(err, context.Canceled):
		return NewError(http.StatusServiceUnavailable, "request canceled", err)
	}
	return ErrInternal(err)
}
