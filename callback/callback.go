// Package callback implements the one-shot callback registry spec.md §4.6
// describes: a caller registers a closure gated on some future protocol
// activity (a response to a command, or an event) being handled, optionally
// restricted to before/after the moment of registration, and the driver
// loop fires it exactly once when that activity is observed.
package callback

import "github.com/kory-oss/dap-core/conn"

// CallIfKind selects the predicate that gates a registered callback's
// firing (spec.md §4.6's `when ∈ {request_seq s | response c | any}`, plus
// an event-name variant this implementation adds alongside it).
type CallIfKind int

const (
	// CallIfResponse fires on the first handled response whose command
	// matches Command (spec.md's `when = response c`).
	CallIfResponse CallIfKind = iota
	// CallIfEvent fires on the first handled event whose name matches
	// Event.
	CallIfEvent
	// CallIfResponseSeq fires on the handled response whose RequestSeq
	// matches Seq (spec.md's `when = request_seq s`).
	CallIfResponseSeq
	// CallIfAnyResponse fires on the next handled response regardless of
	// command (spec.md's `when = any`).
	CallIfAnyResponse
)

// StatusFilter restricts a response-gated callback to successful,
// failed, or any handled response (spec.md §4.6's `call_if ∈ {success,
// fail, always}`). The zero value is CallAlways, so existing callers that
// never set it keep firing unconditionally.
type StatusFilter int

const (
	CallAlways StatusFilter = iota
	CallOnSuccess
	CallOnFailure
)

func (f StatusFilter) matches(success bool) bool {
	switch f {
	case CallOnSuccess:
		return success
	case CallOnFailure:
		return !success
	default:
		return true
	}
}

// CallIf is the condition a registered callback waits on. Status is
// ignored for CallIfEvent, since handled events carry no success/failure
// status.
type CallIf struct {
	Kind    CallIfKind
	Command string // for CallIfResponse
	Event   string // for CallIfEvent
	Seq     int    // for CallIfResponseSeq
	Status  StatusFilter
}

// Registration is one pending callback.
type Registration struct {
	ID           uint64
	Cond         CallIf
	When         conn.HandledWhen
	Payload      any
	Fn           func(payload any)
	RegisteredAt uint64
}

// Registry holds every pending one-shot callback for a connection.
type Registry struct {
	nextID  uint64
	pending []Registration
}

// NewRegistry returns an empty callback registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a callback that fires the first time the driver loop
// observes cond satisfied (subject to when), calling fn with payload
// exactly once. at is the connection's logical clock value at the moment
// of registration, recorded so HandledBeforeQueueing/HandledAfterQueueing
// gating can be evaluated the same way conn's outbound scheduler does.
func (r *Registry) Register(cond CallIf, when conn.HandledWhen, payload any, fn func(payload any), at uint64) uint64 {
	r.nextID++
	r.pending = append(r.pending, Registration{
		ID:           r.nextID,
		Cond:         cond,
		When:         when,
		Payload:      payload,
		Fn:           fn,
		RegisteredAt: at,
	})
	return r.nextID
}

// Cancel removes a pending callback by id without firing it. Reports
// whether a matching registration was found.
func (r *Registry) Cancel(id uint64) bool {
	for i, reg := range r.pending {
		if reg.ID == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Pending reports how many callbacks are still waiting to fire.
func (r *Registry) Pending() int { return len(r.pending) }

func matches(at, registeredAt uint64, when conn.HandledWhen) bool {
	switch when {
	case conn.HandledBeforeQueueing:
		return at < registeredAt
	case conn.HandledAfterQueueing:
		return at >= registeredAt
	default:
		return true
	}
}

// FireReady scans handledResponses and handledEvents for entries that
// satisfy any pending registration's condition, invokes each matching
// callback exactly once, and removes it from the pending set. Called once
// per driver tick after the inbound demultiplexer has updated the
// connection's handled logs (spec.md §2's poll/drain/dispatch/schedule/
// fire-callbacks composition).
func (r *Registry) FireReady(handledResponses []conn.HandledResponse, handledEvents []conn.HandledEvent) int {
	fired := 0
	remaining := r.pending[:0]
	for _, reg := range r.pending {
		if r.tryFire(reg, handledResponses, handledEvents) {
			fired++
			continue
		}
		remaining = append(remaining, reg)
	}
	r.pending = remaining
	return fired
}

func (r *Registry) tryFire(reg Registration, handledResponses []conn.HandledResponse, handledEvents []conn.HandledEvent) bool {
	switch reg.Cond.Kind {
	case CallIfResponse:
		for _, hr := range handledResponses {
			if hr.Command == reg.Cond.Command && matches(hr.At, reg.RegisteredAt, reg.When) && reg.Cond.Status.matches(hr.Success) {
				reg.Fn(reg.Payload)
				return true
			}
		}
	case CallIfResponseSeq:
		for _, hr := range handledResponses {
			if hr.RequestSeq == reg.Cond.Seq && matches(hr.At, reg.RegisteredAt, reg.When) && reg.Cond.Status.matches(hr.Success) {
				reg.Fn(reg.Payload)
				return true
			}
		}
	case CallIfAnyResponse:
		for _, hr := range handledResponses {
			if matches(hr.At, reg.RegisteredAt, reg.When) && reg.Cond.Status.matches(hr.Success) {
				reg.Fn(reg.Payload)
				return true
			}
		}
	case CallIfEvent:
		for _, he := range handledEvents {
			if he.Name == reg.Cond.Event && matches(he.At, reg.RegisteredAt, reg.When) {
				reg.Fn(reg.Payload)
				return true
			}
		}
	}
	return false
}
