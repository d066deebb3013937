// Package conn implements the connection/session state machine, the
// dependency-ordered outbound request scheduler, and the inbound
// response/event bookkeeping a DAP client needs (spec.md §3.2-§3.3, §4.2-§4.4).
// It never decodes business logic out of a response body itself — that is
// the handlers package's job — but it owns every piece of state that the
// scheduler and demultiplexer need to stay correct: sequence numbers, the
// outbound queue, the expected-responses table, and the handled-event and
// handled-response logs dependency predicates read.
package conn

import (
	"log/slog"
	"time"

	dap "github.com/google/go-dap"
	"github.com/pkg/errors"

	"github.com/kory-oss/dap-core/internal/dlog"
	"github.com/kory-oss/dap-core/transport"
)

// Connection is the in-memory state of one adapter session: its transport,
// its position in the lifecycle state machine, its capability sets, and its
// outbound/inbound bookkeeping.
type Connection struct {
	ID string

	tr  *transport.Transport
	log *slog.Logger

	state State

	clientCaps  dap.InitializeRequestArguments
	adapterCaps Capabilities

	seq   int
	clock uint64

	outbound []QueuedRequest
	expected map[int]ExpectedResponse

	handledEvents    []HandledEvent
	handledResponses []HandledResponse

	terminated bool
	restart    any
}

// New wraps an already-spawned transport as a fresh connection in state
// Spawned, tagged with a session id for log correlation.
func New(sessionID string, tr *transport.Transport, log *slog.Logger) *Connection {
	log = dlog.Or(log)
	return &Connection{
		ID:       sessionID,
		tr:       tr,
		log:      dlog.WithSession(log, sessionID),
		state:    StateSpawned,
		expected: make(map[int]ExpectedResponse),
	}
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() State { return c.state }

// SetState forcibly moves the connection to s. Handlers call this when a
// handled response or event implies a lifecycle transition (spec.md §3.2);
// conn itself does not infer transitions from message content.
func (c *Connection) SetState(s State) {
	if c.state == s {
		return
	}
	c.log.Debug("state transition", slog.String("from", c.state.String()), slog.String("to", s.String()))
	c.state = s
}

// MarkDied transitions the connection to Died, used once a write or read
// against the transport fails (a broken pipe, most commonly the adapter
// process having exited).
func (c *Connection) MarkDied(cause error) {
	if c.state.IsTerminal() {
		return
	}
	c.log.Warn("adapter died", slog.Any("cause", cause))
	c.SetState(StateDied)
}

// SetClientCapabilities records what this client declared in its initialize
// request, for reference by handlers that need to know what it promised.
func (c *Connection) SetClientCapabilities(args dap.InitializeRequestArguments) {
	c.clientCaps = args
}

// ClientCapabilities returns what this client declared.
func (c *Connection) ClientCapabilities() dap.InitializeRequestArguments { return c.clientCaps }

// SetAdapterCapabilities records the adapter's advertised capabilities.
func (c *Connection) SetAdapterCapabilities(body dap.Capabilities) {
	c.adapterCaps.Set(body)
}

// AdapterCapabilities returns the adapter's advertised capabilities.
func (c *Connection) AdapterCapabilities() dap.Capabilities { return c.adapterCaps.Body() }

func (c *Connection) nextSeq() int {
	c.seq++
	return c.seq
}

func (c *Connection) tick() uint64 {
	c.clock++
	return c.clock
}

// checkStateAllows enforces spec.md §3.2's gating: before the adapter
// reports Initialized, only the handshake requests are permitted.
func (c *Connection) checkStateAllows(command string) error {
	switch c.state {
	case StateNotSpawned:
		return ErrAdapterNotSpawned
	case StateDied, StateEnded:
		return errors.Wrapf(ErrSessionNotStarted, "connection is %s", c.state)
	}
	if c.state == StateInitialized || c.state.IsRunning() {
		return nil
	}
	switch command {
	case "initialize", "launch", "attach", "configurationDone", "disconnect", "cancel":
		return nil
	default:
		return errors.Wrapf(ErrAdapterNotDoneInitializing, "command %q while connection is %s", command, c.state)
	}
}

// QueueRequest appends msg to the outbound queue once its seq has been
// assigned, subject to capability and lifecycle gating (spec.md §4.2's
// queue_request operation). requestData is opaque correlation context
// handed back to the caller once the matching response is handled.
func (c *Connection) QueueRequest(msg dap.RequestMessage, dep Dependency, requestData any) (int, error) {
	command := msg.GetRequest().Command

	if err := c.checkStateAllows(command); err != nil {
		return 0, err
	}
	if !c.adapterCaps.Supports(command) {
		return 0, errors.Wrapf(ErrAdapterDoesNotSupportRequest, "command %q", command)
	}

	seq := c.nextSeq()
	msg.GetRequest().Seq = seq
	msg.GetRequest().Type = "request"

	c.outbound = append(c.outbound, QueuedRequest{
		Seq:         seq,
		Command:     command,
		Message:     msg,
		Dependency:  dep,
		RequestData: requestData,
		QueuedAt:    c.tick(),
	})
	return seq, nil
}

// dependencySatisfied evaluates entry's Dependency against current
// scheduler state (spec.md §4.3).
func (c *Connection) dependencySatisfied(entry QueuedRequest) bool {
	switch entry.Dependency.Kind {
	case DependencyNone:
		return true
	case DependencyAfterSeq:
		return c.hasHandledResponseSeq(entry.Dependency.Seq, entry.QueuedAt, entry.Dependency.HandledWhen)
	case DependencyAfterResponse:
		return c.hasHandledResponse(entry.Dependency.Command, entry.QueuedAt, entry.Dependency.HandledWhen)
	case DependencyAfterEvent:
		return c.hasHandledEvent(entry.Dependency.Event, entry.QueuedAt, entry.Dependency.HandledWhen)
	default:
		return false
	}
}

func matchesWhen(at, queuedAt uint64, when HandledWhen) bool {
	switch when {
	case HandledBeforeQueueing:
		return at < queuedAt
	case HandledAfterQueueing:
		return at >= queuedAt
	default:
		return true
	}
}

func (c *Connection) hasHandledResponse(command string, queuedAt uint64, when HandledWhen) bool {
	for _, h := range c.handledResponses {
		if h.Command == command && matchesWhen(h.At, queuedAt, when) {
			return true
		}
	}
	return false
}

func (c *Connection) hasHandledResponseSeq(seq int, queuedAt uint64, when HandledWhen) bool {
	for _, h := range c.handledResponses {
		if h.RequestSeq == seq && matchesWhen(h.At, queuedAt, when) {
			return true
		}
	}
	return false
}

func (c *Connection) hasHandledEvent(name string, queuedAt uint64, when HandledWhen) bool {
	for _, h := range c.handledEvents {
		if h.Name == name && matchesWhen(h.At, queuedAt, when) {
			return true
		}
	}
	return false
}

// RunScheduler sweeps the outbound queue once, sending every entry whose
// dependency is currently satisfied and recording it as an expected
// response. It never blocks: an entry whose dependency is not yet satisfied
// is left in place and the sweep moves to the next entry (spec.md §4.3).
// Returns the number of requests actually sent.
func (c *Connection) RunScheduler() (int, error) {
	sent := 0
	i := 0
	for i < len(c.outbound) {
		entry := c.outbound[i]
		if !c.dependencySatisfied(entry) {
			i++
			continue
		}
		if err := c.tr.Write(entry.Message); err != nil {
			c.MarkDied(err)
			return sent, errors.Wrap(err, "conn: send queued request")
		}
		c.expected[entry.Seq] = ExpectedResponse{
			Seq:         entry.Seq,
			Command:     entry.Command,
			RequestData: entry.RequestData,
			SentAt:      c.tick(),
		}
		c.outbound = append(c.outbound[:i], c.outbound[i+1:]...)
		sent++
		// Do not advance i: the next entry has shifted into position i.
	}
	return sent, nil
}

// PopExpectedResponse removes and returns the expected-response entry for
// seq, if any. Handlers call this once an inbound response frame arrives.
func (c *Connection) PopExpectedResponse(seq int) (ExpectedResponse, bool) {
	er, ok := c.expected[seq]
	if ok {
		delete(c.expected, seq)
	}
	return er, ok
}

// RecordHandledResponse appends an entry for command/requestSeq/success to
// the handled-responses log, timestamping it with the connection's logical
// clock.
func (c *Connection) RecordHandledResponse(command string, requestSeq int, success bool) {
	c.handledResponses = append(c.handledResponses, HandledResponse{
		Command:    command,
		RequestSeq: requestSeq,
		Success:    success,
		At:         c.tick(),
	})
}

// RecordHandledEvent appends an entry to the handled-events log.
func (c *Connection) RecordHandledEvent(name string, seq int) {
	c.handledEvents = append(c.handledEvents, HandledEvent{Name: name, Seq: seq, At: c.tick()})
}

// ReplyError sends an error response directly to the wire for an
// adapter-initiated reverse request this connection does not implement
// (spec.md §3 deferred commands: runInTerminal, startDebugging). Unlike
// QueueRequest this bypasses the outbound scheduler entirely: a reply is
// not itself subject to dependency ordering, it just needs a fresh seq.
func (c *Connection) ReplyError(requestSeq int, command, message string) error {
	resp := &dap.ErrorResponse{
		Response: dap.Response{
			ProtocolMessage: dap.ProtocolMessage{Seq: c.nextSeq(), Type: "response"},
			RequestSeq:      requestSeq,
			Success:         false,
			Command:         command,
			Message:         message,
		},
		Body: dap.ErrorResponseBody{},
	}
	if err := c.tr.Write(resp); err != nil {
		c.MarkDied(err)
		return errors.Wrap(err, "conn: reply error")
	}
	return nil
}

// HandledResponses returns a read-only snapshot of the handled-responses
// log, for the callback registry's call_if predicates.
func (c *Connection) HandledResponses() []HandledResponse {
	out := make([]HandledResponse, len(c.handledResponses))
	copy(out, c.handledResponses)
	return out
}

// HandledEvents returns a read-only snapshot of the handled-events log.
func (c *Connection) HandledEvents() []HandledEvent {
	out := make([]HandledEvent, len(c.handledEvents))
	copy(out, c.handledEvents)
	return out
}

// SetTerminated records that a terminated event has been seen, independent
// of State (an adapter may keep the pipe open past termination to let a
// restart request arrive).
func (c *Connection) SetTerminated() { c.terminated = true }

// Terminated reports whether a terminated event has been handled.
func (c *Connection) Terminated() bool { return c.terminated }

// SetRestartPayload records a terminated event's arbitrary restart payload
// verbatim, so a caller driving a restart can pass it through to the next
// session's launch/attach arguments untouched (spec.md §4.5).
func (c *Connection) SetRestartPayload(restart any) { c.restart = restart }

// RestartPayload returns the restart payload recorded by the most recent
// terminated event, or nil if none carried one.
func (c *Connection) RestartPayload() any { return c.restart }

// Poll reports whether an inbound frame is available within timeout,
// delegating to the transport (spec.md §4.1).
func (c *Connection) Poll(timeout time.Duration) (bool, error) {
	ready, err := c.tr.Poll(timeout)
	if err != nil {
		c.MarkDied(err)
	}
	return ready, err
}

// ReadOne reads exactly one inbound frame.
func (c *Connection) ReadOne() (dap.Message, error) {
	msg, err := c.tr.ReadOne()
	if err != nil {
		c.MarkDied(err)
	}
	return msg, err
}

// Close tears down the transport.
func (c *Connection) Close() error {
	if !c.state.IsTerminal() {
		c.SetState(StateEnded)
	}
	return c.tr.Close()
}

// Logger returns the connection's session-tagged logger, for handlers that
// need to log with the same correlation fields.
func (c *Connection) Logger() *slog.Logger { return c.log }
