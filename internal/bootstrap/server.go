package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ShutdownHook releases a resource after the server stopped accepting
// requests, e.g. the database pool.
type ShutdownHook func(ctx context.Context) error

// StartHTTPServer runs the server until SIGINT or SIGTERM, then shuts down
// gracefully and runs hooks in order.
func StartHTTPServer(handler http.Handler, cfg ServerConfig, hooks ...ShutdownHook) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, handler, cfg, hooks...)
}

// Serve runs the server on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, cfg ServerConfig, hooks ...ShutdownHook) error {
	logger := zap.L().Named("bootstrap.server")

	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server running", zap.String("addr", ln.Addr().String()))
		serveErr <- server.Serve(ln)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve failed", zap.Error(err))
			runErr = err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
		runErr = errors.Join(runErr, err)
	} else {
		logger.Info("server exited gracefully")
	}

	for _, hook := range hooks {
		if err := hook(shutdownCtx); err != nil {
			logger.Error("shutdown hook failed", zap.Error(err))
			runErr = errors.Join(runErr, err)
		}
	}

	return runErr
}
