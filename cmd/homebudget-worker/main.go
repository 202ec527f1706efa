package main

import (
	"context"
	"errors"
	"os"
	"time"

	"homebudget/internal/amqp"
	"homebudget/internal/cli"
	applog "homebudget/internal/log"
	"homebudget/internal/sheets"
	"homebudget/internal/sheets/memory"
	"homebudget/internal/worker"
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
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout, applog.ComponentWorker)
	logger.Info("Starting homebudget worker", "backend", cfg.DataBackend, applog.FieldYear, cfg.TargetYear)

	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is private to this process, the worker will only export an empty ledger")
	}

	be, err := cli.OpenBackend(context.Background(), logger.Slog(), cfg)
	if err != nil {
		logger.Error("Failed to open storage backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var exporter sheets.YearExporter
	exporter, err = cli.NewExporter(context.Background(), cfg)
	switch {
	case errors.Is(err, cli.ErrExportDisabled):
		logger.Warn("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting in memory")
		exporter = memory.New()
	case err != nil:
		logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err)
		os.Exit(1)
	default:
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	w := worker.NewExportWorker(be.KV, exporter, worker.ExportConfig{
		Year:            cfg.TargetYear,
		TransactionsKey: cfg.TransactionsKey,
		BudgetsKey:      cfg.BudgetsKey,
		Interval:        cfg.ExportInterval,
	}, logger.Slog())

	var consumer *amqp.Client
	if cfg.HasAMQP() {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on periodic export", applog.FieldError, err)
			consumer = nil
		}
	}

	ctx, done := cli.GracefulShutdown(logger.Slog(), 30*time.Second, func(ctx context.Context) {
		if err := w.Stop(ctx); err != nil {
			logger.Error("Worker stop error", applog.FieldError, err)
		}
		if consumer != nil {
			consumer.Close()
		}
		if err := be.Close(); err != nil {
			logger.Warn("Failed to close storage backend", applog.FieldError, err)
		}
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("Failed to start export worker", applog.FieldError, err)
		os.Exit(1)
	}

	if consumer != nil {
		go func() {
			if err := consumer.ConsumeLedgerEvents(ctx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Ledger event consumption failed", applog.FieldError, err)
			}
		}()
		logger.Info("Consuming ledger events", "queue", cfg.AMQPQueue)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
