package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bio-link-checker/internal/api"
	"bio-link-checker/internal/config"
	"bio-link-checker/internal/linkcheck"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve POST /api/check-links and GET /ping. Configuration comes from
BIOLINK_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			logger := cfg.NewLogger(os.Stdout)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, logger, cfg); err != nil {
				logger.Error("Server failed", slog.Any("error", err))
				return &exitError{code: exitFailed}
			}
			return nil
		},
	}
}

// serve runs the HTTP server until ctx ends, then shuts it down gracefully.
func serve(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	checker := linkcheck.New(logger, linkcheck.WithMaxConcurrency(cfg.MaxConcurrency))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(logger, checker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting...", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
