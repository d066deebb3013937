// Package model holds the in-memory session data a DAP client accumulates
// while stepping through a debuggee: threads, stack frames, scopes,
// variables, sources, modules, and breakpoints, each subject to DAP's
// reference-lifetime rules (a stackFrame id, variablesReference, or
// frameId is only valid until the next stop/continue cycle invalidates it).
// conn and handlers never reach into these structures' internals; they call
// the operations this package exposes.
package model

import dap "github.com/google/go-dap"

// ThreadStatus is a thread's run state as the session currently understands
// it (spec.md §3.3's "status {stopped(body?) / continued / unknown}").
type ThreadStatus int

const (
	// ThreadUnknown is the status of a thread the session has only ever
	// seen via a threads response or a "started" thread event, with no
	// stopped/continued report yet.
	ThreadUnknown ThreadStatus = iota
	ThreadStopped
	ThreadContinued
)

// String renders a ThreadStatus for logging.
func (s ThreadStatus) String() string {
	switch s {
	case ThreadStopped:
		return "stopped"
	case ThreadContinued:
		return "continued"
	default:
		return "unknown"
	}
}

type threadEntry struct {
	thread   dap.Thread
	status   ThreadStatus
	stopped  *dap.StoppedEventBody
	selected bool
}

// Threads tracks the adapter's current thread set, replaced wholesale by a
// threads response and updated incrementally by thread/stopped/continued
// events (spec.md §3.4).
type Threads struct {
	order []int
	byID  map[int]*threadEntry

	// broadcastStatus is the status implied by the most recent
	// allThreadsStopped/allThreadsContinued report, applied to threads the
	// session learns about afterwards via a threads response (spec.md
	// §4.5: "for new threads, initialize status from all_threads_status if
	// known").
	broadcastStatus ThreadStatus
	broadcastBody   *dap.StoppedEventBody
}

// NewThreads returns an empty thread set.
func NewThreads() *Threads {
	return &Threads{byID: make(map[int]*threadEntry)}
}

func (t *Threads) entry(id int) *threadEntry {
	e, ok := t.byID[id]
	if !ok {
		e = &threadEntry{thread: dap.Thread{Id: id}, status: t.broadcastStatus, stopped: t.broadcastBody}
		t.byID[id] = e
		t.order = append(t.order, id)
	}
	return e
}

// Replace installs threads as the full current thread set, in the order the
// adapter returned them. A thread already known keeps its tracked status and
// stopped body; a thread new to this response is initialized from the last
// broadcast all-threads status, if any. Returns the ids that were present
// before the call and are absent from threads, so the caller can dispose of
// whatever else in the session keys off those ids (spec.md §3.4's
// thread-set-coherence invariant — model.Threads only owns its own table,
// not the stacks/scopes/variables cross-model disposal, so it reports what
// it removed instead of reaching into those caches itself).
func (t *Threads) Replace(threads []dap.Thread) (removedIDs []int) {
	next := make(map[int]*threadEntry, len(threads))
	order := make([]int, 0, len(threads))
	seen := make(map[int]bool, len(threads))
	for _, th := range threads {
		e, ok := t.byID[th.Id]
		if !ok {
			e = &threadEntry{status: t.broadcastStatus, stopped: t.broadcastBody}
		}
		e.thread = th
		next[th.Id] = e
		order = append(order, th.Id)
		seen[th.Id] = true
	}
	for id := range t.byID {
		if !seen[id] {
			removedIDs = append(removedIDs, id)
		}
	}
	t.byID = next
	t.order = order
	return removedIDs
}

// Started records a new thread reported by a "started" thread event. It is
// a no-op if the thread is already known (the adapter is allowed to be
// redundant).
func (t *Threads) Started(id int, name string) {
	if _, ok := t.byID[id]; ok {
		return
	}
	e := t.entry(id)
	e.thread = dap.Thread{Id: id, Name: name}
}

// Exited removes a thread reported by an "exited" thread event, disposing
// of its tracked status along with it.
func (t *Threads) Exited(id int) {
	if _, ok := t.byID[id]; !ok {
		return
	}
	delete(t.byID, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// MarkStopped marks a single thread stopped and records its stopped body
// (spec.md §4.5's stopped-event handler).
func (t *Threads) MarkStopped(id int, body dap.StoppedEventBody) {
	e := t.entry(id)
	e.status = ThreadStopped
	bodyCopy := body
	e.stopped = &bodyCopy
}

// MarkAllStopped marks every known thread stopped with the same body, and
// remembers the broadcast so threads discovered afterwards start out
// stopped too, until the next all-threads report supersedes it.
func (t *Threads) MarkAllStopped(body dap.StoppedEventBody) {
	bodyCopy := body
	t.broadcastStatus = ThreadStopped
	t.broadcastBody = &bodyCopy
	for _, e := range t.byID {
		e.status = ThreadStopped
		e.stopped = &bodyCopy
	}
}

// MarkContinued marks a single thread continued and drops its stopped body.
func (t *Threads) MarkContinued(id int) {
	e := t.entry(id)
	e.status = ThreadContinued
	e.stopped = nil
}

// MarkAllContinued marks every known thread continued and remembers the
// broadcast for threads discovered afterwards.
func (t *Threads) MarkAllContinued() {
	t.broadcastStatus = ThreadContinued
	t.broadcastBody = nil
	for _, e := range t.byID {
		e.status = ThreadContinued
		e.stopped = nil
	}
}

// Status reports a thread's tracked status and, if stopped, the body of the
// event that stopped it.
func (t *Threads) Status(id int) (ThreadStatus, *dap.StoppedEventBody, bool) {
	e, ok := t.byID[id]
	if !ok {
		return ThreadUnknown, nil, false
	}
	return e.status, e.stopped, true
}

// Select marks id as the UI's selected thread, clearing any previous
// selection. Selecting an unknown id is a no-op.
func (t *Threads) Select(id int) {
	if _, ok := t.byID[id]; !ok {
		return
	}
	for _, e := range t.byID {
		e.selected = false
	}
	t.byID[id].selected = true
}

// Selected returns the id of the currently selected thread, if any.
func (t *Threads) Selected() (int, bool) {
	for id, e := range t.byID {
		if e.selected {
			return id, true
		}
	}
	return 0, false
}

// All returns the current thread set in display order.
func (t *Threads) All() []dap.Thread {
	out := make([]dap.Thread, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id].thread)
	}
	return out
}

// Get looks up a thread by id.
func (t *Threads) Get(id int) (dap.Thread, bool) {
	e, ok := t.byID[id]
	if !ok {
		return dap.Thread{}, false
	}
	return e.thread, true
}

// Len reports the number of known threads.
func (t *Threads) Len() int { return len(t.order) }
