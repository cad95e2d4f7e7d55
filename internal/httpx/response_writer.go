package httpx

import (
	"net/http"
	"sync"
)

// responseWriter records whether the response has been started and its status.
type responseWriter struct {
	http.ResponseWriter
	status  int
	written bool
	mu      sync.Mutex
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *responseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	w.mu.Unlock()

	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	w.written = true
	w.mu.Unlock()
	return w.ResponseWriter.Write(b)
}

// Written reports whether the status line or any body bytes have been sent.
func (w *responseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Status returns the status code sent, or 200 if none was set explicitly.
func (w *responseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
