package conn

import dap "github.com/google/go-dap"

// DependencyKind selects how a queued request's readiness is evaluated
// (spec.md §4.3).
type DependencyKind int

const (
	// DependencyNone means the request is ready as soon as it reaches the
	// front of the scheduler's sweep.
	DependencyNone DependencyKind = iota
	// DependencyAfterSeq is satisfied once a response with the given
	// request_seq has been recorded as handled (spec.md §4.3's
	// "after_seq(s) ⇒ some handled response has request_seq == s" —
	// the same handled-responses lookup after_response(c) uses, just keyed
	// by seq instead of command).
	DependencyAfterSeq
	// DependencyAfterResponse is satisfied once a response to the given
	// command has been recorded as handled.
	DependencyAfterResponse
	// DependencyAfterEvent is satisfied once an event with the given name
	// has been recorded as handled.
	DependencyAfterEvent
)

// HandledWhen controls when a dependency predicate is allowed to observe a
// handled response/event relative to the moment the dependent request was
// queued (spec.md §4.3 Open Question, resolved in SPEC_FULL.md §3).
type HandledWhen int

const (
	// HandledAny is satisfied by a matching handled entry regardless of
	// whether it was recorded before or after the dependent request was
	// queued.
	HandledAny HandledWhen = iota
	// HandledBeforeQueueing only matches entries recorded strictly before
	// the dependent request was queued.
	HandledBeforeQueueing
	// HandledAfterQueueing only matches entries recorded at or after the
	// moment the dependent request was queued.
	HandledAfterQueueing
)

// Dependency gates a queued request behind some prior protocol activity.
type Dependency struct {
	Kind        DependencyKind
	Seq         int
	Command     string
	Event       string
	HandledWhen HandledWhen
}

// NoDependency is the zero-value, always-ready dependency.
func NoDependency() Dependency { return Dependency{Kind: DependencyNone} }

// AfterSeq builds a dependency satisfied once the response to seq has been
// handled, subject to when.
func AfterSeq(seq int, when HandledWhen) Dependency {
	return Dependency{Kind: DependencyAfterSeq, Seq: seq, HandledWhen: when}
}

// AfterResponse builds a dependency satisfied once a response to command has
// been handled, subject to when.
func AfterResponse(command string, when HandledWhen) Dependency {
	return Dependency{Kind: DependencyAfterResponse, Command: command, HandledWhen: when}
}

// AfterEvent builds a dependency satisfied once event has been handled,
// subject to when.
func AfterEvent(event string, when HandledWhen) Dependency {
	return Dependency{Kind: DependencyAfterEvent, Event: event, HandledWhen: when}
}

// QueuedRequest is one entry of the outbound queue (spec.md §4.2).
// RequestData is opaque to conn: it is whatever correlation payload the
// handlers package needs to process the eventual response, threaded back to
// it via ExpectedResponse.
type QueuedRequest struct {
	Seq         int
	Command     string
	Message     dap.RequestMessage
	Dependency  Dependency
	RequestData any
	QueuedAt    uint64
}

// ExpectedResponse is recorded once a queued request has actually been
// written to the wire; the demultiplexer matches an inbound response's
// RequestSeq against this table.
type ExpectedResponse struct {
	Seq         int
	Command     string
	RequestData any
	SentAt      uint64
}

// HandledEvent is an append-only log entry recorded once an inbound event
// has been dispatched to its handler.
type HandledEvent struct {
	Name string
	Seq  int
	At   uint64
}

// HandledResponse is an append-only log entry recorded once an inbound
// response has been dispatched to its handler.
type HandledResponse struct {
	Command    string
	RequestSeq int
	Success    bool
	At         uint64
}
