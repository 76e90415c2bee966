package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dreamware/shareboard/internal/record"
)

// keyPrefix namespaces board records inside each backend.
const keyPrefix = "shared-board:"

func storageKey(id string) string {
	return keyPrefix + id
}

// RecordStore persists shared board records across one or more independent
// backends. Writes fan out to every backend best-effort; reads query every
// backend and reconcile divergent copies by revision. There is no
// cross-backend transaction, by design: correctness comes from revision
// comparison at read time, not write-time atomicity.
type RecordStore struct {
	backends []Backend        // Uncoordinated storage targets, written and read independently
	now      func() time.Time // Clock, replaceable in tests
}

// NewRecordStore creates a store over the given backends. At least one
// backend is expected; a store with none behaves as permanently empty.
func NewRecordStore(backends ...Backend) *RecordStore {
	return &RecordStore{
		backends: backends,
		now:      time.Now,
	}
}

// Create builds a fresh record for board at revision 1 with generated id
// and tokens. The record is not persisted; call Save.
func (s *RecordStore) Create(board json.RawMessage) record.SharedRecord {
	return record.New(board, s.now())
}

// Save writes rec to every configured backend. A single backend's failure
// is logged and swallowed; replication is best effort, not atomic. The
// only surfaced error is a record that cannot be marshaled.
func (s *RecordStore) Save(ctx context.Context, rec record.SharedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
	}

	key := storageKey(rec.ID)
	for _, b := range s.backends {
		if err := b.Put(ctx, key, data); err != nil {
			// Best effort to keep storage backends aligned
			log.Printf("store: save to %s backend failed for %s: %v", b.Name(), rec.ID, err)
		}
	}
	return nil
}

// Get returns the newest copy of the record for id across all backends,
// or nil if no backend holds it. Per-backend read failures are logged and
// tolerated; absence and total failure both yield nil, distinguished only
// by logging.
//
// When backends disagree, the winner is re-saved to every backend so
// laggards catch up (read repair). The repair is itself best effort.
func (s *RecordStore) Get(ctx context.Context, id string) *record.SharedRecord {
	key := storageKey(id)
	copies := make([]*record.SharedRecord, 0, len(s.backends))

	for _, b := range s.backends {
		data, err := b.Get(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			copies = append(copies, nil)
			continue
		}
		if err != nil {
			log.Printf("store: read from %s backend failed for %s: %v", b.Name(), id, err)
			copies = append(copies, nil)
			continue
		}

		var rec record.SharedRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			log.Printf("store: corrupt record in %s backend for %s: %v", b.Name(), id, err)
			copies = append(copies, nil)
			continue
		}
		copies = append(copies, &rec)
	}

	newest := record.SelectNewest(copies)
	if newest == nil {
		return nil
	}

	if diverged(copies, newest) {
		log.Printf("store: backends diverged for %s, re-saving revision %d", id, newest.Revision)
		_ = s.Save(ctx, *newest)
	}
	return newest
}

// diverged reports whether any backend's view of the record differs from
// the reconciled winner.
func diverged(copies []*record.SharedRecord, newest *record.SharedRecord) bool {
	for _, c := range copies {
		if c == nil {
			return true
		}
		if c.Revision != newest.Revision || c.UpdatedAt != newest.UpdatedAt {
			return true
		}
	}
	return false
}
