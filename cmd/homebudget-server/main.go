package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"homebudget/internal/amqp"
	"homebudget/internal/cli"
	apphttp "homebudget/internal/http"
	"homebudget/internal/ledger"
	applog "homebudget/internal/log"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to load .env", applog.FieldError, err)
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout, applog.ComponentApp)
	logger.Info("Starting homebudget server", "port", cfg.Port, "backend", cfg.DataBackend, applog.FieldYear, cfg.TargetYear)

	be, err := cli.OpenBackend(context.Background(), logger.Slog(), cfg)
	if err != nil {
		logger.Error("Failed to open storage backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	notifier, closeNotifier := cli.NewNotifier(logger.Slog(), cfg)

	store, err := ledger.Open(context.Background(), be.KV, ledger.Options{
		Year:            cfg.TargetYear,
		TransactionsKey: cfg.TransactionsKey,
		BudgetsKey:      cfg.BudgetsKey,
		Confirmer:       ledger.ContextConfirmer{},
		Notifier:        notifier,
		Logger:          logger.Slog(),
	})
	if err != nil {
		logger.Error("Failed to open ledger", applog.FieldError, err)
		os.Exit(1)
	}

	opts := []apphttp.Option{
		apphttp.WithReadyCheck("storage", func(ctx context.Context) error {
			_, _, err := be.KV.Get(ctx, cfg.TransactionsKey)
			return err
		}),
	}
	if client, ok := notifier.(*amqp.Client); ok {
		opts = append(opts, apphttp.WithReadyCheck("amqp", client.Healthy))
	}

	srv := apphttp.NewServer(":"+cfg.Port, store, logger, opts...)

	ctx, done := cli.GracefulShutdown(logger.Slog(), 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := closeNotifier(); err != nil {
			logger.Warn("Failed to close AMQP client", applog.FieldError, err)
		}
		if err := be.Close(); err != nil {
			logger.Warn("Failed to close storage backend", applog.FieldError, err)
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
