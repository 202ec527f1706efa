package backend

import (
	"context"

	"homebudget/internal/storage"
)

// CleanupFunc releases what a backend holds open.
type CleanupFunc func() error

// BackendResult is an opened backend: the KV the ledger reads and writes,
// and the cleanup to run on exit.
type BackendResult struct {
	Type    BackendType
	KV      storage.KV
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory opens the configured backend.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects a backend and its location.
type Config struct {
	Type          BackendType
	DataDirectory string // file backend
	SQLiteDBPath  string // sqlite backend
}

// BackendType names a storage backend, as in DATA_BACKEND.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string { return string(bt) }
