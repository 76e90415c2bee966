// Package storage provides the persistence layer for shared board records:
// a Backend interface over independent key-value targets, concrete memory,
// file, and SQLite implementations, and the RecordStore that replicates
// records across all of them.
//
// # Overview
//
// Board records live under a namespaced key ("shared-board:{id}")
// replicated identically into every configured backend. The backends are
// deliberately uncoordinated: a fast in-memory cache can sit next to a
// slower durable SQLite file, and neither knows about the other.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│            Share Service            │
//	└─────────────────────────────────────┘
//	                 │
//	                 ▼
//	┌─────────────────────────────────────┐
//	│            RecordStore              │
//	│   (fan-out save, reconciled get)    │
//	└─────────────────────────────────────┘
//	                 │
//	    ┌────────────┼────────────┐
//	    ▼            ▼            ▼
//	┌────────┐  ┌────────┐  ┌────────┐
//	│ Memory │  │  File  │  │ SQLite │
//	│Backend │  │Backend │  │Backend │
//	└────────┘  └────────┘  └────────┘
//
// # Consistency model
//
// Save writes to every backend and swallows individual failures, so after
// a partial outage the backends can disagree. Get reads every backend,
// unmarshals whatever it can, and selects the authoritative copy with
// record.SelectNewest (revision first, updatedAt tiebreak). When copies
// disagree the winner is re-saved to all backends, healing laggards at
// read time (read repair).
//
// Absence is a legitimate outcome: if no backend holds the key — whether
// because it was never written or because every backend is down — Get
// returns nil. The two cases differ only in what gets logged.
//
// This is eventual consistency with last-write-wins semantics, which the
// domain tolerates: the revision counter carried inside each record is
// the ordering signal, so no backend-level consensus is needed.
//
// # Backends
//
// MemoryBackend: RWMutex-guarded map with copy-on-read/write semantics.
// Fast, non-durable, always configured; doubles as the test backend.
//
// FileBackend: one file per key under a root directory, written via temp
// file and rename so partial writes are never visible.
//
// SQLiteBackend: single records table on mattn/go-sqlite3 with upsert
// writes and WAL journaling.
//
// # Error handling
//
// ErrKeyNotFound is the one sentinel every backend shares; the
// RecordStore treats it as absence, not failure. Any other backend error
// is logged at the store boundary and absorbed — a broken backend
// degrades replication, it never fails a request.
//
// # Thread safety
//
// All backends are safe for concurrent use. The RecordStore itself is
// stateless apart from its backend list and may be shared freely.
package storage
