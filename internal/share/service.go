package share

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dreamware/shareboard/internal/notify"
	"github.com/dreamware/shareboard/internal/record"
	"github.com/dreamware/shareboard/internal/storage"
)

// DefaultWaitTimeout bounds the server-side suspension of a long-poll.
const DefaultWaitTimeout = 20 * time.Second

// Typed operation failures, surfaced verbatim to the request boundary.
var (
	// ErrNotFound means no backend holds the requested board id
	ErrNotFound = errors.New("shared board not found")
	// ErrForbidden means the presented token grants no role on the board
	ErrForbidden = errors.New("invalid share token")
	// ErrEditRequired means the token grants view access but the operation writes
	ErrEditRequired = errors.New("editor access required")
)

// CreateResult carries the credentials for a newly shared board.
type CreateResult struct {
	ID        string `json:"id"`
	ViewToken string `json:"viewToken"`
	EditToken string `json:"editToken"`
}

// BoardState is a board snapshot returned to an authorized reader.
type BoardState struct {
	Board     json.RawMessage `json:"board"`
	Role      record.Role     `json:"role"`
	UpdatedAt string          `json:"updatedAt"`
	Revision  int64           `json:"revision"`
}

// UpdateResult acknowledges a successful write.
type UpdateResult struct {
	UpdatedAt string `json:"updatedAt"`
	Revision  int64  `json:"revision"`
}

// ChangeResult is the outcome of a long-poll. Board is only populated
// when Changed is true.
type ChangeResult struct {
	Changed   bool            `json:"changed"`
	Role      record.Role     `json:"role"`
	Board     json.RawMessage `json:"board,omitempty"`
	UpdatedAt string          `json:"updatedAt"`
	Revision  int64           `json:"revision"`
}

// Service orchestrates the record store, role resolution, and the
// revision notifier into the four share operations consumed by the HTTP
// boundary. It holds no per-board state of its own: the store owns
// durability, the notifier owns pending long-polls.
//
// Concurrency: operations may run concurrently for the same id with no
// per-id mutual exclusion. Two concurrent edits race through Update's
// read-modify-write; whichever completes first determines the lower
// revision, and last-writer-wins at the backends. That weak-consistency
// trade-off is deliberate and matches the revision-based reconciliation
// in the store.
type Service struct {
	store       *storage.RecordStore
	notifier    *notify.Notifier
	now         func() time.Time // Clock, replaceable in tests
	waitTimeout time.Duration    // Server-side long-poll bound
}

// NewService creates a share service. A non-positive waitTimeout selects
// DefaultWaitTimeout.
func NewService(store *storage.RecordStore, notifier *notify.Notifier, waitTimeout time.Duration) *Service {
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &Service{
		store:       store,
		notifier:    notifier,
		now:         time.Now,
		waitTimeout: waitTimeout,
	}
}

// Create persists a new shared record for board at revision 1 and returns
// its id and both tokens. The caller keeps the edit token; anyone holding
// only the view token reads but never writes.
func (s *Service) Create(ctx context.Context, board json.RawMessage) (CreateResult, error) {
	rec := s.store.Create(board)
	if err := s.store.Save(ctx, rec); err != nil {
		return CreateResult{}, err
	}
	return CreateResult{
		ID:        rec.ID,
		ViewToken: rec.ViewToken,
		EditToken: rec.EditToken,
	}, nil
}

// Fetch returns the current board state for id to a holder of either
// token. Fails with ErrNotFound when no backend holds the id and
// ErrForbidden when the token grants no role.
func (s *Service) Fetch(ctx context.Context, id, token string) (BoardState, error) {
	rec := s.store.Get(ctx, id)
	if rec == nil {
		return BoardState{}, ErrNotFound
	}
	role := record.ResolveRole(*rec, token)
	if role == "" {
		return BoardState{}, ErrForbidden
	}
	return BoardState{
		Board:     rec.Board,
		Role:      role,
		UpdatedAt: rec.UpdatedAt,
		Revision:  rec.Revision,
	}, nil
}

// Update replaces the board wholesale and advances the revision by one.
// Requires the edit token; a view token fails with ErrEditRequired and
// mutates nothing.
//
// The write is optimistic: after authorizing against the record read
// first, the authoritative base is re-fetched immediately before deriving
// the successor, so a stale copy from the authorization read is never
// extended. There is no compare-and-swap on a caller-supplied revision —
// concurrent editors race and the last writer wins, which the revision
// counter makes visible to every reader.
func (s *Service) Update(ctx context.Context, id, token string, board json.RawMessage) (UpdateResult, error) {
	rec := s.store.Get(ctx, id)
	if rec == nil {
		return UpdateResult{}, ErrNotFound
	}
	if role := record.ResolveRole(*rec, token); role != record.RoleEdit {
		if role == "" {
			return UpdateResult{}, ErrForbidden
		}
		return UpdateResult{}, ErrEditRequired
	}

	// Re-fetch the authoritative base right before mutating
	base := s.store.Get(ctx, id)
	if base == nil {
		base = rec
	}

	next := record.BuildNext(*base, board, s.now())
	if err := s.store.Save(ctx, next); err != nil {
		return UpdateResult{}, err
	}
	s.notifier.Notify(next.ID, next.Revision)

	return UpdateResult{
		UpdatedAt: next.UpdatedAt,
		Revision:  next.Revision,
	}, nil
}

// WaitForChange long-polls for a revision beyond since. If the record has
// already moved past since it returns immediately with the full board.
// Otherwise it suspends on the notifier, bounded by the configured wait
// timeout, then re-resolves the role and re-reads the store — the bare
// revision a waiter receives is never trusted. A timeout (or a wake that
// the re-read does not confirm) yields Changed=false with the latest
// known revision.
//
// Cancellation of ctx (the client closed the connection) releases the
// registered waiter and returns like a timeout.
func (s *Service) WaitForChange(ctx context.Context, id, token string, since int64) (ChangeResult, error) {
	rec := s.store.Get(ctx, id)
	if rec == nil {
		return ChangeResult{}, ErrNotFound
	}
	role := record.ResolveRole(*rec, token)
	if role == "" {
		return ChangeResult{}, ErrForbidden
	}

	if rec.Revision > since {
		return ChangeResult{
			Changed:   true,
			Role:      role,
			Board:     rec.Board,
			UpdatedAt: rec.UpdatedAt,
			Revision:  rec.Revision,
		}, nil
	}

	s.notifier.Wait(ctx, id, since, s.waitTimeout)

	refreshed := s.store.Get(ctx, id)
	if refreshed == nil {
		return ChangeResult{}, ErrNotFound
	}
	nextRole := record.ResolveRole(*refreshed, token)
	if nextRole == "" {
		return ChangeResult{}, ErrForbidden
	}

	if refreshed.Revision <= since {
		return ChangeResult{
			Changed:   false,
			Role:      nextRole,
			UpdatedAt: refreshed.UpdatedAt,
			Revision:  refreshed.Revision,
		}, nil
	}

	return ChangeResult{
		Changed:   true,
		Role:      nextRole,
		Board:     refreshed.Board,
		UpdatedAt: refreshed.UpdatedAt,
		Revision:  refreshed.Revision,
	}, nil
}
