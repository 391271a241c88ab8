package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snow-ghost/validator/pkg/observability"
	"github.com/snow-ghost/validator/validator"
	"golang.org/x/sync/errgroup"
)

func main() {
	config := validator.LoadConfig()

	obs, err := observability.NewManager(observability.Config{
		ServiceName:    "validator",
		ServiceVersion: "1.0.0",
		Environment:    os.Getenv("ENVIRONMENT"),
		JaegerEndpoint: config.JaegerEndpoint,
		LogLevel:       config.LogLevel,
		LogFormat:      config.LogFormat,
	})
	if err != nil {
		slog.Error("failed to set up observability", "error", err)
		os.Exit(1)
	}
	logger := obs.GetLogger().Slog()
	slog.SetDefault(logger)

	svc, err := validator.NewService(config, obs)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + config.HTTPPort,
		Handler:           validator.NewServer(svc.Validator, svc.Pipeline, obs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("validator starting", "port", config.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return svc.Consumer().Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("validator stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to flush telemetry", "error", err)
	}
	logger.Info("validator stopped")
}
