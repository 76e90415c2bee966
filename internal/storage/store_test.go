package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dreamware/shareboard/internal/record"
)

// failingBackend simulates a backend whose every call fails
type failingBackend struct{}

func (f *failingBackend) Name() string { return "failing" }

func (f *failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (f *failingBackend) Put(context.Context, string, []byte) error {
	return errors.New("backend down")
}

func (f *failingBackend) Delete(context.Context, string) error {
	return errors.New("backend down")
}

// backendContract exercises the behavior every Backend must share
func backendContract(t *testing.T, b Backend) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		_, err := b.Get(ctx, "shared-board:nonexistent")
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("put and get", func(t *testing.T) {
		if err := b.Put(ctx, "shared-board:a", []byte(`{"revision":1}`)); err != nil {
			t.Fatalf("Failed to put value: %v", err)
		}
		value, err := b.Get(ctx, "shared-board:a")
		if err != nil {
			t.Fatalf("Failed to get value: %v", err)
		}
		if string(value) != `{"revision":1}` {
			t.Errorf("Expected stored value back, got %s", value)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := b.Put(ctx, "shared-board:a", []byte(`{"revision":2}`)); err != nil {
			t.Fatalf("Failed to overwrite value: %v", err)
		}
		value, err := b.Get(ctx, "shared-board:a")
		if err != nil {
			t.Fatalf("Failed to get value: %v", err)
		}
		if string(value) != `{"revision":2}` {
			t.Errorf("Expected overwritten value, got %s", value)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := b.Delete(ctx, "shared-board:a"); err != nil {
			t.Fatalf("Failed to delete value: %v", err)
		}
		_, err := b.Get(ctx, "shared-board:a")
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("delete missing key", func(t *testing.T) {
		if err := b.Delete(ctx, "shared-board:nonexistent"); err != nil {
			t.Errorf("Delete of missing key should not error, got %v", err)
		}
	})
}

func TestMemoryBackend(t *testing.T) {
	backendContract(t, NewMemoryBackend())
}

func TestFileBackend(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file backend: %v", err)
	}
	backendContract(t, b)
}

// putRecord stores a marshaled record directly in a backend
func putRecord(t *testing.T, b Backend, rec record.SharedRecord) {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Failed to marshal record: %v", err)
	}
	if err := b.Put(context.Background(), storageKey(rec.ID), data); err != nil {
		t.Fatalf("Failed to seed backend: %v", err)
	}
}

// TestRecordStore tests fan-out saves and reconciled reads
func TestRecordStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save reaches every backend", func(t *testing.T) {
		a, b := NewMemoryBackend(), NewMemoryBackend()
		store := NewRecordStore(a, b)

		rec := store.Create(json.RawMessage(`{"cards":[]}`))
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		for _, backend := range []*MemoryBackend{a, b} {
			if _, err := backend.Get(ctx, storageKey(rec.ID)); err != nil {
				t.Errorf("Expected record in %s backend, got %v", backend.Name(), err)
			}
		}
	})

	t.Run("save survives a failing backend", func(t *testing.T) {
		healthy := NewMemoryBackend()
		store := NewRecordStore(&failingBackend{}, healthy)

		rec := store.Create(json.RawMessage(`{}`))
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Expected backend failure to be swallowed, got %v", err)
		}
		if got := store.Get(ctx, rec.ID); got == nil {
			t.Fatal("Expected record from the healthy backend")
		}
	})

	t.Run("get returns nil when no backend holds the id", func(t *testing.T) {
		store := NewRecordStore(NewMemoryBackend(), NewMemoryBackend())
		if got := store.Get(ctx, "missing"); got != nil {
			t.Errorf("Expected nil for unknown id, got %+v", got)
		}
	})

	t.Run("get returns nil when every backend fails", func(t *testing.T) {
		store := NewRecordStore(&failingBackend{}, &failingBackend{})
		if got := store.Get(ctx, "anything"); got != nil {
			t.Errorf("Expected nil when all backends fail, got %+v", got)
		}
	})

	t.Run("get reconciles divergent copies by revision", func(t *testing.T) {
		a, b := NewMemoryBackend(), NewMemoryBackend()
		store := NewRecordStore(a, b)

		base := record.SharedRecord{
			ID:        "board-1",
			Board:     json.RawMessage(`{}`),
			ViewToken: "v",
			EditToken: "e",
			UpdatedAt: "2026-02-11T08:00:00Z",
			Revision:  1,
		}
		newer := base
		newer.Revision = 2
		newer.UpdatedAt = "2026-02-11T08:05:00Z"

		putRecord(t, a, base)
		putRecord(t, b, newer)

		got := store.Get(ctx, "board-1")
		if got == nil || got.Revision != 2 {
			t.Fatalf("Expected revision 2 winner, got %+v", got)
		}
	})

	t.Run("get breaks revision ties by updatedAt", func(t *testing.T) {
		a, b := NewMemoryBackend(), NewMemoryBackend()
		store := NewRecordStore(a, b)

		older := record.SharedRecord{ID: "board-2", Board: json.RawMessage(`{"n":1}`), Revision: 2, UpdatedAt: "2026-02-11T08:01:00Z"}
		newer := record.SharedRecord{ID: "board-2", Board: json.RawMessage(`{"n":2}`), Revision: 2, UpdatedAt: "2026-02-11T08:02:00Z"}

		putRecord(t, a, older)
		putRecord(t, b, newer)

		got := store.Get(ctx, "board-2")
		if got == nil || string(got.Board) != `{"n":2}` {
			t.Fatalf("Expected the later same-revision copy, got %+v", got)
		}
	})

	t.Run("get heals laggard backends", func(t *testing.T) {
		a, b := NewMemoryBackend(), NewMemoryBackend()
		store := NewRecordStore(a, b)

		newer := record.SharedRecord{ID: "board-3", Board: json.RawMessage(`{}`), Revision: 3, UpdatedAt: "2026-02-11T08:00:00Z"}
		putRecord(t, a, newer)
		// b holds nothing for board-3

		if got := store.Get(ctx, "board-3"); got == nil || got.Revision != 3 {
			t.Fatalf("Expected revision 3 winner, got %+v", got)
		}

		// Read repair should have copied the winner into b
		data, err := b.Get(ctx, storageKey("board-3"))
		if err != nil {
			t.Fatalf("Expected laggard backend to be healed, got %v", err)
		}
		var healed record.SharedRecord
		if err := json.Unmarshal(data, &healed); err != nil {
			t.Fatalf("Failed to unmarshal healed record: %v", err)
		}
		if healed.Revision != 3 {
			t.Errorf("Expected healed revision 3, got %d", healed.Revision)
		}
	})

	t.Run("get tolerates a corrupt copy", func(t *testing.T) {
		a, b := NewMemoryBackend(), NewMemoryBackend()
		store := NewRecordStore(a, b)

		if err := a.Put(ctx, storageKey("board-4"), []byte("not json")); err != nil {
			t.Fatalf("Failed to seed corrupt value: %v", err)
		}
		putRecord(t, b, record.SharedRecord{ID: "board-4", Board: json.RawMessage(`{}`), Revision: 1})

		if got := store.Get(ctx, "board-4"); got == nil || got.Revision != 1 {
			t.Fatalf("Expected intact copy to win over corrupt one, got %+v", got)
		}
	})

	t.Run("create produces distinct revision-1 records", func(t *testing.T) {
		store := NewRecordStore(NewMemoryBackend())
		first := store.Create(json.RawMessage(`{}`))
		second := store.Create(json.RawMessage(`{}`))

		if first.Revision != 1 || second.Revision != 1 {
			t.Error("Expected new records at revision 1")
		}
		if first.ID == second.ID {
			t.Error("Expected distinct ids")
		}
	})
}
