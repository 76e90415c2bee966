// Package record defines the shared board record and the pure functions
// that order, derive, and authorize records.
//
// # Overview
//
// A SharedRecord wraps an opaque board payload with the metadata the sync
// layer needs: a lookup id, a pair of bearer tokens, creation and update
// timestamps, and a revision counter. Everything in this package is pure
// computation over records; persistence lives in internal/storage and
// orchestration in internal/share.
//
// # Ordering
//
// Revision is the primary ordering signal. It starts at 1 and increases by
// exactly 1 per update, so for a single record any two copies are ordered
// by revision alone. UpdatedAt only matters when two copies carry the same
// revision, which can happen when a write fanned out to multiple backends
// and landed at slightly different times:
//
//	IsNewer(next, nil)            == true
//	IsNewer(rev 3, rev 2)         == true
//	IsNewer(rev 2 @ t2, rev 2 @ t1) == t2 > t1
//
// SelectNewest folds IsNewer over the copies read from each backend and is
// the whole of the store's reconciliation strategy: no write-time
// consensus, just pick the winner at read time.
//
// # Derivation
//
// BuildNext produces the successor record for an update. It never accepts
// a caller-supplied revision; the next revision is always computed from
// the base, which is what makes revisions strictly increasing.
//
// # Authorization
//
// Possession of a token is the only authentication. ResolveRole maps the
// edit token to RoleEdit, the view token to RoleView, and everything else
// to no access. Comparisons are constant-time since the tokens function
// as bearer credentials.
package record
