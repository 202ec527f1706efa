package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homebudget/internal/cli"
	"homebudget/internal/ledger"
	applog "homebudget/internal/log"
	"homebudget/internal/sheets"
)

func main() {
	os.Exit(run())
}

func run() int {
	assumeYes := flag.Bool("yes", false, "acepta todas las confirmaciones")
	lang := flag.String("lang", "es", "idioma para los importes")
	envFile := flag.String("env", ".env", "fichero de variables de entorno")
	flag.Parse()

	if err := cli.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := cli.SetupLogger(cfg.LogLevel, os.Stderr, applog.ComponentCLI)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := cli.OpenBackend(ctx, logger.Slog(), cfg)
	if err != nil {
		logger.Error("Failed to open storage backend", applog.FieldError, err, "backend", cfg.DataBackend)
		return 1
	}
	defer be.Close()

	notifier, closeNotifier := cli.NewNotifier(logger.Slog(), cfg)
	defer closeNotifier()

	store, err := ledger.Open(ctx, be.KV, ledger.Options{
		Year:            cfg.TargetYear,
		TransactionsKey: cfg.TransactionsKey,
		BudgetsKey:      cfg.BudgetsKey,
		Confirmer:       cli.NewPrompter(os.Stdin, os.Stdout, *assumeYes),
		Notifier:        notifier,
		Logger:          logger.Slog(),
	})
	if err != nil {
		logger.Error("Failed to open ledger", applog.FieldError, err)
		return 1
	}

	var exporter sheets.YearExporter
	if cfg.HasSheetsExport() {
		if exporter, err = cli.NewExporter(ctx, cfg); err != nil {
			logger.Error("Failed to initialize spreadsheet exporter", applog.FieldError, err)
			return 1
		}
	}

	app := &cli.App{
		Store:    store,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Format:   cli.NewFormatter(cli.ParseLanguage(*lang)),
		Now:      time.Now,
		Exporter: exporter,
	}
	if err := app.Run(ctx, flag.Args()); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		if msg := ledger.Notice(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return 1
	}
	return 0
}
