// Package share implements the share service: the orchestration layer
// that turns the record store, token roles, and the revision notifier
// into the four operations the HTTP boundary exposes.
//
// # Operations
//
//	Create(board)                 → id + view/edit tokens, record at revision 1
//	Fetch(id, token)              → board + role + updatedAt + revision
//	Update(id, token, board)      → next revision (edit token only)
//	WaitForChange(id, token, since) → changed/unchanged snapshot, long-poll
//
// Failures are sentinel errors: ErrNotFound when no backend holds the id,
// ErrForbidden when the token grants no role, ErrEditRequired when a
// view-only token attempts a write. Backend faults never surface here;
// the store absorbs them.
//
// # Change propagation
//
// Update bumps the revision and broadcasts it through the notifier.
// WaitForChange checks the store first (a poller that is already behind
// gets its answer without suspending), then parks on the notifier for at
// most the configured timeout. After any wake it re-reads the store and
// re-resolves the role rather than trusting the notification, which makes
// a missed or spurious broadcast harmless — the long-poll just degrades
// to a bounded poll.
//
// # Consistency
//
// Update is a lockless read-modify-write. Concurrent editors both derive
// a successor from whatever base they read; revisions stay strictly
// increasing per completed cycle, but the loser's board content is
// overwritten (last writer wins). Clients observe the race only through
// the revision counter. Adding a compare-and-swap precondition would
// change the external contract and is intentionally not done here.
package share
