package kvstore

import (
	"os"
	"path/filepath"
	"testing"
)

// eachStore runs fn against every Store backend.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemory())
	})

	t.Run("dir", func(t *testing.T) {
		s, err := NewDir(t.TempDir())
		if err != nil {
			t.Fatalf("NewDir: %v", err)
		}
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		f, err := os.CreateTemp("", "laguz-test-*.db")
		if err != nil {
			t.Fatal(err)
		}
		f.Close()
		t.Cleanup(func() { os.Remove(f.Name()) })

		s, err := OpenSQLite(f.Name())
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func TestSetAndGet(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		if err := s.Set("note-1", "v1"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, ok, err := s.Get("note-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !ok || got != "v1" {
			t.Errorf("Get = (%q, %v)", got, ok)
		}
	})
}

func TestGetAbsentKey(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, ok, err := s.Get("note-404")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if ok {
			t.Error("absent key should report ok=false")
		}
	})
}

func TestOverwrite(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_ = s.Set("note-1", "old")
		if err := s.Set("note-1", "new"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, _, _ := s.Get("note-1")
		if got != "new" {
			t.Errorf("value = %q, want new", got)
		}
		keys, _ := s.Keys()
		if len(keys) != 1 {
			t.Errorf("keys = %v, want exactly one", keys)
		}
	})
}

func TestRemove(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_ = s.Set("note-1", "v")
		if err := s.Remove("note-1"); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		if _, ok, _ := s.Get("note-1"); ok {
			t.Error("key should be gone after Remove")
		}
		// Removing again is a no-op.
		if err := s.Remove("note-1"); err != nil {
			t.Errorf("Remove absent: %v", err)
		}
	})
}

func TestKeysListsEverything(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_ = s.Set("note-100", "a")
		_ = s.Set("note-200", "b")
		_ = s.Set("settings", "c")

		keys, err := s.Keys()
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		if len(keys) != 3 {
			t.Errorf("len(keys) = %d, want 3: %v", len(keys), keys)
		}
	})
}

func TestMemoryKeysInsertionOrder(t *testing.T) {
	m := NewMemory()
	_ = m.Set("note-300", "c")
	_ = m.Set("note-100", "a")
	_ = m.Set("note-200", "b")
	_ = m.Set("note-100", "a2") // overwrite keeps position

	keys, _ := m.Keys()
	want := []string{"note-300", "note-100", "note-200"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestDirRejectsEscapingKeys(t *testing.T) {
	s, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	cases := []string{"../outside", "a/b", `a\b`, ".hidden", ""}
	for _, k := range cases {
		if err := s.Set(k, "x"); err == nil {
			t.Errorf("Set(%q) should fail", k)
		}
		if _, _, err := s.Get(k); err == nil {
			t.Errorf("Get(%q) should fail", k)
		}
	}
}

func TestDirAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	_ = s.Set("note-1", "first")
	if err := s.Set("note-1", "second"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, _ := s.Get("note-1")
	if got != "second" {
		t.Errorf("value = %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, ".laguz-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
	keys, _ := s.Keys()
	if len(keys) != 1 || keys[0] != "note-1" {
		t.Errorf("keys = %v", keys)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	f, err := os.CreateTemp("", "laguz-reopen-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := OpenSQLite(f.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	_ = s.Set("note-1", "persisted")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := OpenSQLite(f.Name())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, ok, _ := s2.Get("note-1")
	if !ok || got != "persisted" {
		t.Errorf("Get after reopen = (%q, %v)", got, ok)
	}
}
