package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir implements Store with one file per key under a root directory. Values
// are written atomically (tmp file → fsync → rename), so an external reader
// such as the watcher never observes a torn record.
type Dir struct {
	root string // absolute path to the store directory
}

// NewDir creates a Dir store rooted at the given directory, creating it if
// needed.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("kvstore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: create root: %w", err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute store directory, for watchers.
func (d *Dir) Root() string { return d.root }

// keyPath maps a key onto a file path inside the root. Keys that could
// escape the root or collide with temp files are rejected.
func (d *Dir) keyPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("kvstore: empty key")
	}
	if strings.ContainsAny(key, "/\\") || key != filepath.Clean(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("kvstore: invalid key: %s", key)
	}
	return filepath.Join(d.root, key), nil
}

// Get returns the value for key.
func (d *Dir) Get(key string) (string, bool, error) {
	p, err := d.keyPath(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes value under key atomically.
func (d *Dir) Set(key, value string) error {
	p, err := d.keyPath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, ".laguz-tmp-*")
	if err != nil {
		return fmt.Errorf("kvstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(value); err != nil {
		return fmt.Errorf("kvstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("kvstore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kvstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("kvstore: rename: %w", err)
	}
	success = true
	return nil
}

// Remove deletes the file for key. An absent key is not an error.
func (d *Dir) Remove(key string) error {
	p, err := d.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("kvstore: remove %s: %w", key, err)
	}
	return nil
}

// Keys lists the store directory in lexical order, skipping subdirectories
// and in-flight temp files.
func (d *Dir) Keys() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("kvstore: list keys: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op for the directory store.
func (d *Dir) Close() error { return nil }
