package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"homebudget/internal/amqp"
	"homebudget/internal/ledger"
	applog "homebudget/internal/log"
	"homebudget/internal/sheets"
	"homebudget/internal/storage"
)

// ExportConfig holds configuration for the export worker
type ExportConfig struct {
	// Year is the ledger year to export (default: core.DefaultYear)
	Year int

	// TransactionsKey and BudgetsKey locate the ledger documents
	TransactionsKey string
	BudgetsKey      string

	// Interval is how often the documents are checked for changes (default: 5m)
	Interval time.Duration
}

// DefaultExportConfig returns sensible defaults
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		TransactionsKey: ledger.DefaultTransactionsKey,
		BudgetsKey:      ledger.DefaultBudgetsKey,
		Interval:        5 * time.Minute,
	}
}

// ExportWorker mirrors the stored ledger into a spreadsheet. It exports
// when a ledger event arrives and, as a backup for lost messages, whenever
// the periodic check finds the documents changed since the last export.
// Concurrent triggers share one export.
type ExportWorker struct {
	kv       storage.KV
	exporter sheets.YearExporter
	config   ExportConfig
	logger   *slog.Logger

	group singleflight.Group

	stateMu     sync.Mutex
	fingerprint []byte
	exports     int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportWorker(kv storage.KV, exporter sheets.YearExporter, config ExportConfig, logger *slog.Logger) *ExportWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultExportConfig().Interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportWorker{
		kv:       kv,
		exporter: exporter,
		config:   config,
		logger:   logger.With(applog.FieldComponent, applog.ComponentWorker),
	}
}

// HandleEvent exports after a ledger event of the configured year.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEvent) error {
	if w.config.Year != 0 && msg.Year != w.config.Year {
		w.logger.DebugContext(ctx, "Ignoring ledger event for another year",
			applog.FieldYear, msg.Year, "kind", msg.Kind)
		return nil
	}
	w.logger.InfoContext(ctx, "Processing ledger event",
		"kind", msg.Kind,
		applog.FieldRevision, msg.Revision)
	return w.Export(ctx, true)
}

// Export loads the ledger and writes it out. Unless force is set, nothing
// is written when the documents match the last export.
func (w *ExportWorker) Export(ctx context.Context, force bool) error {
	_, err, _ := w.group.Do(fmt.Sprintf("export-%t", force), func() (any, error) {
		return nil, w.export(ctx, force)
	})
	return err
}

func (w *ExportWorker) export(ctx context.Context, force bool) error {
	store, err := ledger.Open(ctx, w.kv, ledger.Options{
		Year:            w.config.Year,
		TransactionsKey: w.config.TransactionsKey,
		BudgetsKey:      w.config.BudgetsKey,
		Logger:          w.logger,
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	snap := store.Snapshot()

	fp, err := fingerprint(snap)
	if err != nil {
		return err
	}
	if !force && w.unchanged(fp) {
		w.logger.DebugContext(ctx, "Ledger unchanged, skipping export")
		return nil
	}

	report := sheets.BuildYearReport(snap)
	if err := w.exporter.ExportYear(ctx, report); err != nil {
		return fmt.Errorf("export year %d: %w", report.Year, err)
	}

	w.stateMu.Lock()
	w.fingerprint = fp
	w.exports++
	w.stateMu.Unlock()

	w.logger.InfoContext(ctx, "Ledger exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldYear, report.Year,
		applog.FieldCount, len(report.Transactions))
	return nil
}

func (w *ExportWorker) unchanged(fp []byte) bool {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return w.fingerprint != nil && bytes.Equal(w.fingerprint, fp)
}

// Exports returns how many exports were written.
func (w *ExportWorker) Exports() int {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return w.exports
}

func fingerprint(snap ledger.Snapshot) ([]byte, error) {
	b, err := json.Marshal(struct {
		Year         int
		Transactions any
		Budgets      any
	}{snap.Year, snap.Transactions, snap.Budgets})
	if err != nil {
		return nil, fmt.Errorf("fingerprint ledger: %w", err)
	}
	return b, nil
}

// Start begins the periodic loop. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	w.logger.InfoContext(ctx, "Export worker started", "interval", w.config.Interval)
	return nil
}

// Stop gracefully stops the worker and waits for the loop to exit.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.running = false
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Export worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the loop is running
func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ExportWorker) tick(ctx context.Context) {
	if err := w.Export(ctx, false); err != nil {
		w.logger.ErrorContext(ctx, "Periodic export failed", applog.FieldError, err)
	}
}
