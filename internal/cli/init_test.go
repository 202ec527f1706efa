package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"homebudget/internal/config"
	"homebudget/internal/ledger"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("HOMEBUDGET_TEST_ENV=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("HOMEBUDGET_TEST_ENV") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("HOMEBUDGET_TEST_ENV"); got != "loaded" {
		t.Errorf("expected variable from file, got %q", got)
	}
}

func TestNewNotifierWithoutAMQP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, closeFn := NewNotifier(logger, &config.Config{})
	if _, ok := n.(ledger.NopNotifier); !ok {
		t.Errorf("expected NopNotifier, got %T", n)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestNewExporterDisabled(t *testing.T) {
	_, err := NewExporter(context.Background(), &config.Config{})
	if !errors.Is(err, ErrExportDisabled) {
		t.Errorf("expected ErrExportDisabled, got %v", err)
	}
}

func TestOpenBackendMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res, err := OpenBackend(context.Background(), logger, &config.Config{DataBackend: "memory"})
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	defer res.Close()
	if res.KV == nil {
		t.Fatal("expected a KV store")
	}
}
