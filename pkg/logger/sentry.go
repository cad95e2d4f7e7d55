package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	Release     string `env:"SENTRY_RELEASE"`
	// MinLevel is the lowest level stored as a Sentry log: "warn" or "error".
	MinLevel string `env:"SENTRY_MIN_LEVEL" envDefault:"warn"`
}

// NewWithSentry creates a logger that sends logs to both stdout and Sentry.
// If DSN is empty, only stdout logging is enabled (graceful fallback for local dev).
// Context extractors are applied to logs sent to both destinations.
func NewWithSentry(logCfg Config, cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdoutHandler := newHandler(os.Stdout, logCfg)

	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(stdoutHandler, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		// Keep logging to stdout if Sentry is unreachable or misconfigured.
		slog.New(stdoutHandler).Error("failed to initialize Sentry", Error(err))
		return slog.New(NewLogHandlerDecorator(stdoutHandler, extractors...))
	}

	// Errors create Issues; warnings are stored as logs for context.
	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if ParseLevel(cfg.MinLevel) == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	combinedHandler := fanout{stdoutHandler, sentryHandler}

	return slog.New(NewLogHandlerDecorator(combinedHandler, extractors...))
}

// FlushSentry waits up to timeout for buffered Sentry events to be delivered.
// It is a no-op when Sentry was never initialized.
func FlushSentry(timeout time.Duration) bool {
	if sentry.CurrentHub().Client() == nil {
		return true
	}
	return sentry.Flush(timeout)
}
