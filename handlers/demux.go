// Package handlers implements the inbound message demultiplexer and the
// typed per-command handlers that fold a DAP response or event into a
// session's connection state and data model (spec.md §4.4-§4.5). It also
// owns the single driver tick that composes poll, drain, dispatch,
// schedule, and callback-firing into the one cooperative step a caller
// repeats in its own loop (spec.md §2, §5).
package handlers

import (
	"time"

	dap "github.com/google/go-dap"
	"github.com/pkg/errors"

	"github.com/kory-oss/dap-core/requests"
)

// deferredReverseRequests lists the adapter-initiated request commands this
// client acknowledges with a failure response rather than implementing, per
// SPEC_FULL.md's deferred-commands list: they require a UI surface (a
// terminal, a restart/attach target picker) this core does not provide.
var deferredReverseRequests = map[string]bool{
	"runInTerminal":  true,
	"startDebugging": true,
}

// DispatchOne routes a single inbound message: a response is matched to its
// expected-response entry and folded into the store, an event is folded
// into the store and logged as handled, and an adapter-initiated reverse
// request is answered with a not-implemented error response.
func DispatchOne(sess *requests.Session, msg dap.Message) error {
	switch m := msg.(type) {
	case dap.ResponseMessage:
		return handleResponse(sess.Conn, sess.Store, m)
	case dap.EventMessage:
		return handleEvent(sess.Conn, sess.Store, m)
	case dap.RequestMessage:
		req := m.GetRequest()
		if deferredReverseRequests[req.Command] {
			return sess.Conn.ReplyError(req.Seq, req.Command, "not implemented")
		}
		return sess.Conn.ReplyError(req.Seq, req.Command, "unsupported reverse request")
	default:
		return errors.Errorf("handlers: message of unrecognized shape: %T", msg)
	}
}

// Tick performs one cooperative step of the driver loop (spec.md §2, §5):
// poll for up to pollTimeout, drain and dispatch every frame that is
// already fully available without blocking further, run the outbound
// scheduler, and fire any callbacks whose condition that dispatch pass
// satisfied. It returns the number of inbound messages dispatched.
func Tick(sess *requests.Session, pollTimeout time.Duration) (int, error) {
	dispatched := 0

	ready, err := sess.Conn.Poll(pollTimeout)
	if err != nil {
		return dispatched, errors.Wrap(err, "handlers: poll")
	}
	for ready {
		msg, err := sess.Conn.ReadOne()
		if err != nil {
			return dispatched, errors.Wrap(err, "handlers: read")
		}
		if err := DispatchOne(sess, msg); err != nil {
			sess.Conn.Logger().Warn("dispatch error", "err", err)
		}
		dispatched++

		ready, err = sess.Conn.Poll(0)
		if err != nil {
			return dispatched, errors.Wrap(err, "handlers: poll")
		}
	}

	if _, err := sess.Conn.RunScheduler(); err != nil {
		return dispatched, errors.Wrap(err, "handlers: scheduler")
	}

	sess.Callbacks.FireReady(sess.Conn.HandledResponses(), sess.Conn.HandledEvents())
	return dispatched, nil
}
