// Package notify implements the revision notifier: an in-process registry
// that lets long-poll requests suspend until a record's revision advances,
// without busy-polling storage.
//
// # Overview
//
// The notifier maps record ids to sets of single-use waiters. An update
// calls Notify(id, revision), which wakes every waiter registered for
// that id and clears the set. A long-poll calls Wait, which registers a
// waiter and blocks on whichever comes first:
//
//   - Notify fires          → returns the broadcast revision
//   - the timeout elapses   → returns a miss
//   - the request context
//     is canceled           → returns a miss (connection closed)
//   - Stop drains the
//     registry              → returns a miss (shutdown)
//
// Every exit path deregisters the waiter and prunes empty sets, so the
// registry's size is bounded by the number of in-flight long-polls.
//
// # One-shot semantics
//
// Notify is a broadcast to the waiters registered at that instant, not a
// replayable log. A waiter arriving after the broadcast sees nothing;
// that window is covered by the share service, which re-reads the store
// before and after every wait and so never depends on catching the
// broadcast itself. For the same reason the revision value a waiter
// receives is advisory: the service always re-fetches the record rather
// than trusting the bare number.
//
// # Deployment scope
//
// The registry lives in process memory. Two service instances do not see
// each other's Notify calls, so a multi-instance deployment degrades to
// bare timeout-bounded polling of the store unless the notifier is backed
// by a shared pub/sub. That limitation is inherited from the design, not
// an oversight; see the repository design notes.
package notify
