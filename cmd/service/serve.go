// cmd/service/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github-popularity/internal/api"
	"github-popularity/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the background ingestion",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	// Start the ingestion in the background
	pool := worker.NewPool(1)
	if a.syncer != nil {
		pool.Spawn(ctx, func(ctx context.Context) {
			a.syncer.Run(ctx)
		})
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           api.NewRouter(a.service, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	logger.Info("Application started", "addr", a.cfg.HTTPAddr)

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownGracePeriod)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	// The ingestion is not cancelled; it gets the grace period to finish.
	if !pool.AwaitWithTimeout(a.cfg.ShutdownGracePeriod) {
		logger.Warn("Ingestion still running after grace period, exiting anyway",
			"grace_period", a.cfg.ShutdownGracePeriod.String())
	}
	logger.Info("Shutdown complete")
	return nil
}
