package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sunday4k/sunday4k/pkg/logger"
)

// Run starts the HTTP server and blocks until ctx is canceled, SIGINT or
// SIGTERM arrives, or the server fails.
//
// Startup hooks run first; the first failure aborts Run after the shutdown
// hooks have been given a chance to release resources. On shutdown the server
// drains in-flight requests, then shutdown hooks run in registration order.
//
// A nil handler runs the hooks without opening a listener, which is how the
// worker-only process is hosted.
func Run(ctx context.Context, handler http.Handler, opts ...Option) error {
	cfg := newConfig(opts...)

	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			log.Error("startup hook failed", logger.Error(err))
			return errors.Join(err, shutdown(cfg, log, nil))
		}
	}

	if handler == nil {
		log.Info("running without http listener")
		<-ctx.Done()
		return shutdown(cfg, log, nil)
	}

	srv := &http.Server{
		Addr:              cfg.address,
		Handler:           handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.Join(err, shutdown(cfg, log, nil))
	}
	if cfg.onListen != nil {
		cfg.onListen(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Join(err, shutdown(cfg, log, nil))
		}
	case <-ctx.Done():
	}

	return shutdown(cfg, log, srv)
}

func shutdown(cfg *config, log *slog.Logger, srv *http.Server) error {
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	for _, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", logger.Error(err))
		}
	}

	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	log.Info("shutdown completed")
	return nil
}
