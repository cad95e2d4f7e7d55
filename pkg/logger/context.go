package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	jobIDKey
)

// WithRequestID stores an HTTP request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithJobID stores a background job ID in ctx.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// RequestIDExtractor adds request_id to records logged with a request context.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := RequestID(ctx); id != "" {
		return slog.String("request_id", id), true
	}
	return slog.Attr{}, false
}

// JobIDExtractor adds job_id to records logged from inside a worker.
func JobIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := ctx.Value(jobIDKey).(int64); ok && id > 0 {
		return slog.Int64("job_id", id), true
	}
	return slog.Attr{}, false
}

// DefaultExtractors returns the extractors every Sunday4K process installs.
func DefaultExtractors() []ContextExtractor {
	return []ContextExtractor{RequestIDExtractor, JobIDExtractor}
}
