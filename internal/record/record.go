package record

import (
	"crypto/subtle"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role is the access level granted by possession of a share token.
type Role string

const (
	// RoleEdit grants read-write access to the shared board.
	RoleEdit Role = "edit"
	// RoleView grants read-only access to the shared board.
	RoleView Role = "view"
)

// SharedRecord is the durable synchronization unit for one shared board.
// The board payload is opaque to the sync layer: it is stored and returned
// verbatim, never inspected. Revision is the sole ordering signal across
// storage backends; UpdatedAt only breaks ties between same-revision copies.
type SharedRecord struct {
	ID        string          `json:"id"`        // Lookup key in every backend, immutable
	Board     json.RawMessage `json:"board"`     // Opaque document payload, replaced wholesale on update
	ViewToken string          `json:"viewToken"` // Read-only bearer token, immutable
	EditToken string          `json:"editToken"` // Read-write bearer token, immutable
	CreatedAt string          `json:"createdAt"` // RFC 3339, set once at creation
	UpdatedAt string          `json:"updatedAt"` // RFC 3339, refreshed on every update
	Revision  int64           `json:"revision"`  // Starts at 1, +1 per update, never decreases
}

// New creates a record for a fresh board at revision 1 with newly generated
// id and tokens. The two tokens are independently generated and guaranteed
// to differ from each other.
func New(board json.RawMessage, now time.Time) SharedRecord {
	ts := FormatTime(now)
	viewToken := newToken()
	editToken := newToken()
	for editToken == viewToken {
		editToken = newToken()
	}

	return SharedRecord{
		ID:        uuid.NewString(),
		Board:     board,
		ViewToken: viewToken,
		EditToken: editToken,
		CreatedAt: ts,
		UpdatedAt: ts,
		Revision:  1,
	}
}

// newToken generates a share token: a UUID with a short second UUID
// fragment appended for extra entropy.
func newToken() string {
	return uuid.NewString() + "-" + uuid.NewString()[:8]
}

// FormatTime renders a timestamp the way records store them.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Timestamp parses a stored timestamp into Unix milliseconds.
// Missing or unparsable values are treated as the epoch (0) so that a
// record with a damaged timestamp never outranks an intact one at the
// same revision.
func Timestamp(value string) int64 {
	if value == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// IsNewer reports whether next is authoritative over current.
// A nil current always loses. Revision is compared first; UpdatedAt is
// only consulted as a strict tiebreaker when revisions are equal, which
// happens when the same revision was written to different backends at
// different moments.
func IsNewer(next SharedRecord, current *SharedRecord) bool {
	if current == nil {
		return true
	}
	if next.Revision != current.Revision {
		return next.Revision > current.Revision
	}
	return Timestamp(next.UpdatedAt) > Timestamp(current.UpdatedAt)
}

// SelectNewest returns the authoritative record among candidates, or nil
// if every candidate is nil. Used to reconcile divergent copies read from
// independent backends.
func SelectNewest(candidates []*SharedRecord) *SharedRecord {
	var newest *SharedRecord
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if IsNewer(*c, newest) {
			newest = c
		}
	}
	return newest
}

// BuildNext derives the successor of base: same identity and tokens, the
// new board payload, a fresh UpdatedAt, and the next revision. Pure; the
// caller persists the result. The max guard keeps revisions positive even
// if a base record was stored with a damaged revision.
func BuildNext(base SharedRecord, board json.RawMessage, now time.Time) SharedRecord {
	next := base
	next.Board = board
	next.UpdatedAt = FormatTime(now)
	next.Revision = max(1, base.Revision) + 1
	return next
}

// ResolveRole maps a presented token to the access role it grants on rec.
// The edit token is checked first, then the view token; anything else
// (including an empty token) grants no role and returns "".
//
// Tokens are bearer credentials, so comparisons are constant-time.
func ResolveRole(rec SharedRecord, token string) Role {
	if token == "" {
		return ""
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(rec.EditToken)) == 1 {
		return RoleEdit
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(rec.ViewToken)) == 1 {
		return RoleView
	}
	return ""
}
