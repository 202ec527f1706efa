package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func roundTrip(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	var got doc
	ok, err := LoadJSON(ctx, kv, "missing", &got)
	if err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := SaveJSON(ctx, kv, "doc", doc{Name: "a", Count: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveJSON(ctx, kv, "doc", doc{Name: "b", Count: 2}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	ok, err = LoadJSON(ctx, kv, "doc", &got)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got != (doc{Name: "b", Count: 2}) {
		t.Fatalf("unexpected doc %+v", got)
	}

	if err := kv.Set(ctx, "broken", []byte("{not json")); err != nil {
		t.Fatalf("set broken: %v", err)
	}
	_, err = LoadJSON(ctx, kv, "broken", &got)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	roundTrip(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte(`{"name":"x"}`)
	_ = m.Set(context.Background(), "k", buf)
	buf[2] = 'X'
	got, _, _ := m.Get(context.Background(), "k")
	if string(got) != `{"name":"x"}` {
		t.Fatalf("stored value aliased caller buffer: %s", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	roundTrip(t, f)

	if _, err := os.Stat(filepath.Join(dir, "data", "doc.json")); err != nil {
		t.Fatalf("expected doc.json on disk: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "data"))
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileRejectsPathKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	for _, key := range []string{"", "../x", "a/b", ".hidden"} {
		if err := f.Set(context.Background(), key, []byte("{}")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "homebudget.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()

	roundTrip(t, repo)

	keys, err := repo.Keys(context.Background())
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "broken" || keys[1] != "doc" {
		t.Fatalf("unexpected keys %v", keys)
	}

	v, dirty, err := SchemaVersion(dbPath)
	if err != nil || dirty || v != 1 {
		t.Fatalf("schema version=%d dirty=%v err=%v", v, dirty, err)
	}

	// Migrations are idempotent on an existing database.
	if err := RunMigrations(dbPath); err != nil {
		t.Fatalf("rerun migrations: %v", err)
	}
}
