package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shareboard.db")
	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("Failed to open sqlite backend: %v", err)
	}
	defer b.Close()

	backendContract(t, b)

	t.Run("values survive reopen", func(t *testing.T) {
		ctx := context.Background()
		if err := b.Put(ctx, "shared-board:durable", []byte(`{"revision":5}`)); err != nil {
			t.Fatalf("Failed to put value: %v", err)
		}
		if err := b.Close(); err != nil {
			t.Fatalf("Failed to close backend: %v", err)
		}

		reopened, err := NewSQLiteBackend(path)
		if err != nil {
			t.Fatalf("Failed to reopen backend: %v", err)
		}
		defer reopened.Close()

		value, err := reopened.Get(ctx, "shared-board:durable")
		if err != nil {
			t.Fatalf("Failed to get value after reopen: %v", err)
		}
		if string(value) != `{"revision":5}` {
			t.Errorf("Expected value to survive reopen, got %s", value)
		}
	})
}
