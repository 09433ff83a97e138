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

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	warnInsecureConfig(cfg, logger)

	store, err := NewDynamoStore(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to create DynamoDB store", "error", err)
		os.Exit(1)
	}

	handler := NewPaletteHandler(store, logger)

	if cfg.Lambda() {
		logger.Info("starting lambda handler", "table", cfg.DynamoTableName)
		lambda.Start(handler.HandleAPIGateway)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, NewRouter(handler, cfg, logger), cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// warnInsecureConfig logs settings that must not reach production.
func warnInsecureConfig(cfg Config, logger *slog.Logger) {
	if cfg.DevBypassAuth {
		logger.Warn("DEV_BYPASS_AUTH is enabled: requests without a token act as the X-User-Id user",
			"defaultUser", devUser)
	}
}

// serve runs the HTTP server until ctx is done, then drains in-flight
// requests for up to 15 seconds.
func serve(ctx context.Context, router http.Handler, cfg Config, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "table", cfg.DynamoTableName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
