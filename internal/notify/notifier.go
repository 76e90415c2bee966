package notify

import (
	"context"
	"sync"
	"time"
)

// waiter is a single-use continuation handle for one pending long-poll.
// Its channel is buffered so a broadcast never blocks on a waiter that
// has already timed out.
type waiter struct {
	ch chan int64
}

// Notifier is an in-process registry of per-id waiters woken when a
// record's revision advances. It is a one-shot broadcast, not an event
// log: a waiter that registers after Notify has fired must fall back to
// reading the store.
//
// The registry is process-local and non-durable. It does not coordinate
// across service instances; a multi-instance deployment degrades to
// timeout-bounded polling of the store.
type Notifier struct {
	mu      sync.Mutex                  // Protects waiters and stopped
	waiters map[string]map[*waiter]bool // Pending waiters per record id
	stopped bool                        // Set by Stop; rejects new waiters
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		waiters: make(map[string]map[*waiter]bool),
	}
}

// Wait blocks until Notify fires for id, the timeout elapses, ctx is
// canceled, or the notifier stops. It returns the broadcast revision and
// true on a wake, or 0 and false otherwise.
//
// Guard clauses mirror the request contract: a negative sinceRevision or
// non-positive timeout resolves immediately with no registration. The
// caller must not trust the returned revision alone; re-read the store
// after a wake.
func (n *Notifier) Wait(ctx context.Context, id string, sinceRevision int64, timeout time.Duration) (int64, bool) {
	if sinceRevision < 0 || timeout <= 0 {
		return 0, false
	}

	w := &waiter{ch: make(chan int64, 1)}

	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return 0, false
	}
	set := n.waiters[id]
	if set == nil {
		set = make(map[*waiter]bool)
		n.waiters[id] = set
	}
	set[w] = true
	n.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case revision, ok := <-w.ch:
		// ok is false when Stop drained the registry
		return revision, ok
	case <-timer.C:
		n.remove(id, w)
		return 0, false
	case <-ctx.Done():
		// A closed connection must release its waiter
		n.remove(id, w)
		return 0, false
	}
}

// Notify wakes every waiter currently registered for id with revision,
// then clears the id's waiter set. Waiters that raced a timeout simply
// never read the buffered send.
func (n *Notifier) Notify(id string, revision int64) {
	n.mu.Lock()
	set := n.waiters[id]
	delete(n.waiters, id)
	n.mu.Unlock()

	for w := range set {
		w.ch <- revision
	}
}

// remove deregisters a waiter that fired its own exit path (timeout or
// cancellation), pruning the id's set once empty so the registry never
// grows unbounded.
func (n *Notifier) remove(id string, w *waiter) {
	n.mu.Lock()
	defer n.mu.Unlock()

	set := n.waiters[id]
	if set == nil {
		return
	}
	delete(set, w)
	if len(set) == 0 {
		delete(n.waiters, id)
	}
}

// Pending returns the number of waiters currently registered for id.
func (n *Notifier) Pending(id string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.waiters[id])
}

// Stop drains the registry: every pending waiter is released empty-handed
// and further registrations are rejected. Called once at shutdown so
// in-flight long-polls return before the HTTP server closes.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return
	}
	n.stopped = true

	for id, set := range n.waiters {
		for w := range set {
			close(w.ch)
		}
		delete(n.waiters, id)
	}
}
