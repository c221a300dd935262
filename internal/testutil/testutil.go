// Package testutil provides shared test helpers for setting up stores and
// models.
package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/starford/laguz/internal/kvstore"
	"github.com/starford/laguz/internal/notes"
)

// TestModel creates a notes model over a fresh in-memory store.
func TestModel(t *testing.T) (*notes.Model, *kvstore.Memory) {
	t.Helper()
	store := kvstore.NewMemory()
	return notes.NewModel(store, slog.Default()), store
}

// TestDirStore creates a directory-backed store under a temp dir that is
// automatically cleaned up.
func TestDirStore(t *testing.T) *kvstore.Dir {
	t.Helper()
	store, err := kvstore.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// TestSQLiteStore creates a temporary SQLite-backed store that is
// automatically cleaned up.
func TestSQLiteStore(t *testing.T) *kvstore.SQLite {
	t.Helper()
	f, err := os.CreateTemp("", "laguz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	store, err := kvstore.OpenSQLite(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
