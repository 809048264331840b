package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rm/user-service/app"
	"github.com/rm/user-service/config"
	"github.com/rm/user-service/internal/observability"
	"github.com/rm/user-service/routes"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "user-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", zap.Error(err))
		_ = logger.Sync()
		return err
	}

	srv := newServer(cfg.Server, routes.SetupRoutes(deps))

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		_ = deps.Close(ctx)
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("user-service listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("environment", cfg.Environment),
			zap.String("auth_mode", cfg.Auth.Mode))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-stop:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case serveErr = <-serverErr:
		logger.Error("server exited unexpectedly", zap.Error(serveErr))
	}

	return shutdown(srv, deps, cfg.Server, logger, serveErr)
}

func newServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

// shutdown drains in-flight requests, then flushes audit events and closes the pool
func shutdown(srv *http.Server, deps *app.Dependencies, cfg config.ServerConfig, logger *zap.Logger, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	errs := []error{cause}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		_ = srv.Close()
		errs = append(errs, err)
	}
	logger.Info("http server stopped")

	if err := deps.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
