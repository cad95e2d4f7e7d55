package server

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// Server defaults.
const (
	DefaultAddress           = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Option configures Run.
type Option func(*config)

type config struct {
	logger          *slog.Logger
	onListen        func(net.Addr)
	address         string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		address:         DefaultAddress,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Address sets the HTTP listen address.
// Defaults to ":8080".
func Address(addr string) Option {
	return func(c *config) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Logger sets the server logger. If nil, logging is disabled.
func Logger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// It covers both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function that runs before the listener accepts
// connections. A failing hook aborts Run.
//
//	server.StartupHook(jobs.Start)
func StartupHook(fn func(context.Context) error) Option {
	return func(c *config) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered, after the HTTP server stops.
//
//	server.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) Option {
	return func(c *config) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// OnListen registers a callback that receives the bound address once the
// listener is open. Useful with ":0" addresses.
func OnListen(fn func(net.Addr)) Option {
	return func(c *config) {
		c.onListen = fn
	}
}
