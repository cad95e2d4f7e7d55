package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// MaxBodySize caps request bodies read by DecodeJSON.
const MaxBodySize = 1 << 20

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(v)
}

// NoContent writes a 204 response.
func NoContent(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DecodeJSON reads a JSON request body into v. Unknown fields and trailing data
// are rejected. All failures are returned as a 400 *Error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return NewError(http.StatusUnsupportedMediaType, "content type must be application/json", nil)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return ErrBadRequest("request body is empty", err)
		case errors.As(err, &maxErr):
			return NewError(http.StatusRequestEntityTooLarge, "request body is too large", err)
		default:
			return ErrBadRequest("invalid JSON body", err)
		}
	}

	if dec.More() {
		return ErrBadRequest("request body must contain a single JSON object", nil)
	}
	return nil
}
