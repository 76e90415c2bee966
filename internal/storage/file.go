package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileBackend implements Backend with one file per key under a root
// directory. Writes go through a temp file and rename so a crashed write
// never leaves a partial record behind.
type FileBackend struct {
	root string // Directory holding one file per key
}

// NewFileBackend creates a file backend rooted at dir, creating the
// directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileBackend{root: dir}, nil
}

// Name identifies the backend in logs
func (f *FileBackend) Name() string { return "file" }

// path maps a key to its on-disk location. Keys are percent-escaped so
// the namespace separator in "shared-board:{id}" stays filesystem-safe.
func (f *FileBackend) path(key string) string {
	return filepath.Join(f.root, url.QueryEscape(key)+".json")
}

// Get retrieves a value by key
// Returns ErrKeyNotFound if the key doesn't exist
func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put stores a value with the given key, overwriting any existing value.
// The write is atomic: temp file in the same directory, then rename.
func (f *FileBackend) Put(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.root, ".put-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Delete removes a key-value pair
// No error if key doesn't exist (idempotent)
func (f *FileBackend) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
