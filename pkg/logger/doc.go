// Package logger builds the slog loggers used by the Sunday4K processes.
//
// Every logger writes JSON (or text, with LOG_FORMAT=text) to stdout and runs
// records through a decorating handler that appends attributes pulled from
// the context at log time:
//
//	log := logger.NewWithConfig(cfg.Log, logger.DefaultExtractors()...)
//	ctx := logger.WithRequestID(r.Context(), "abc-123")
//	log.InfoContext(ctx, "template previewed", slog.String("template", "welcome"))
//	// {"level":"INFO","msg":"template previewed","template":"welcome","request_id":"abc-123"}
//
// NewWithSentry additionally forwards warnings and errors to Sentry. With an empty
// DSN it behaves exactly like NewWithConfig, so local runs need no Sentry setup.
// Call FlushSentry before the process exits.
//
// NewNope discards everything and is the default for library code that accepts
// an optional logger.
package logger
