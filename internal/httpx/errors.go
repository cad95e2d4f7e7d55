package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an HTTP error with everything the error handler needs to respond.
type Error struct {
	// Err is the underlying cause. It is logged, never sent to the client.
	Err error

	// Message is the client-facing message.
	Message string

	// Code is the HTTP status code.
	Code int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Code
}

// NewError creates an Error with the given status code, message and optional cause.
func NewError(code int, message string, cause error) *Error {
	if message == "" {
		message = http.StatusText(code)
	}
	return &Error{Code: code, Message: message, Err: cause}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, cause error) *Error {
	return NewError(http.StatusBadRequest, message, cause)
}

func ErrNotFound(message string, cause error) *Error {
	return NewError(http.StatusNotFound, message, cause)
}

func ErrConflict(message string, cause error) *Error {
	return NewError(http.StatusConflict, message, cause)
}

func ErrUnprocessable(message string, cause error) *Error {
	return NewError(http.StatusUnprocessableEntity, message, cause)
}

func ErrTooManyRequests(message string, cause error) *Error {
	return NewError(http.StatusTooManyRequests, message, cause)
}

func ErrInternal(cause error) *Error {
	return NewError(http.StatusInternalServerError, "", cause)
}

func ErrServiceUnavailable(message string, cause error) *Error {
	return NewError(http.StatusServiceUnavailable, message, cause)
}

// AsError extracts an *Error from err's chain. Returns nil if there is none.
func AsError(err error) *Error {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
