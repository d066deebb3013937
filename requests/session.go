package requests

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kory-oss/dap-core/callback"
	"github.com/kory-oss/dap-core/conn"
	"github.com/kory-oss/dap-core/model"
	"github.com/kory-oss/dap-core/transport"
)

// Session bundles one debug session's connection, session data model, and
// callback registry — the three pieces of state a driver loop needs to
// advance a session by one tick (spec.md §2, §6.1 "begin_session").
type Session struct {
	ID        string
	Conn      *conn.Connection
	Store     *model.Store
	Callbacks *callback.Registry
}

// AdapterSpec describes how to spawn the adapter process for BeginSession.
type AdapterSpec struct {
	Argv []string
	Cwd  string
}

// BeginSession spawns the adapter process, wraps it in a Connection, and
// queues the full handshake in one pass (spec.md §4.7): initialize
// unconditionally, then launch/attach gated on initialize's response, then
// configurationDone gated on the "initialized" event. It does not wait for
// any of these responses; the caller's driver loop advances the session via
// its own tick, and the scheduler (conn.RunScheduler) releases launch and
// configurationDone only once their dependency is actually satisfied.
func BeginSession(ctx context.Context, spec AdapterSpec, info ClientInfo, cfg LaunchConfig, log *slog.Logger) (*Session, error) {
	return beginSession(ctx, spec, info, cfg, log, model.NewOutput())
}

// RestartSession ends prev (if still live) and begins a fresh session
// against the same adapter spec, carrying prev's output log forward instead
// of starting it empty (spec.md §5's "output... survives session
// restarts"). Every other sub-model starts clean, same as BeginSession.
func RestartSession(ctx context.Context, spec AdapterSpec, info ClientInfo, cfg LaunchConfig, log *slog.Logger, prev *Session) (*Session, error) {
	output := model.NewOutput()
	if prev != nil {
		output = prev.Store.Output
		_ = EndSession(prev, EndViaDisconnect, false)
	}
	return beginSession(ctx, spec, info, cfg, log, output)
}

func beginSession(ctx context.Context, spec AdapterSpec, info ClientInfo, cfg LaunchConfig, log *slog.Logger, output *model.Output) (*Session, error) {
	sessionID := uuid.NewString()
	tr, err := transport.Spawn(ctx, spec.Argv, spec.Cwd, log)
	if err != nil {
		return nil, errors.Wrap(err, "requests: spawn adapter")
	}

	c := conn.New(sessionID, tr, log)
	c.SetState(conn.StateInitializing)

	if _, err := Initialize(c, info); err != nil {
		tr.Close()
		return nil, errors.Wrap(err, "requests: begin session: initialize")
	}

	afterInitialize := conn.AfterResponse("initialize", conn.HandledAny)
	var launchErr error
	switch cfg.Request {
	case "attach":
		_, launchErr = Attach(c, cfg, afterInitialize)
	default:
		_, launchErr = Launch(c, cfg, afterInitialize)
	}
	if launchErr != nil {
		tr.Close()
		return nil, errors.Wrap(launchErr, "requests: begin session: launch/attach")
	}

	afterInitializedEvent := conn.AfterEvent("initialized", conn.HandledAny)
	if _, err := ConfigurationDone(c, afterInitializedEvent); err != nil {
		tr.Close()
		return nil, errors.Wrap(err, "requests: begin session: configurationDone")
	}

	return &Session{
		ID:        sessionID,
		Conn:      c,
		Store:     model.NewStoreRestarting(output),
		Callbacks: callback.NewRegistry(),
	}, nil
}

// EndSessionHow selects which DAP request EndSession issues to wind a
// session down (spec.md §4.7's "end_session(how ∈ {terminate, disconnect})"
// — these are two distinct requests, not one request with a flag).
type EndSessionHow int

const (
	// EndViaDisconnect issues a disconnect request: tear the whole session
	// down. terminateDebuggee controls whether the adapter should also kill
	// the debuggee process as part of that teardown.
	EndViaDisconnect EndSessionHow = iota
	// EndViaTerminate issues a terminate request: ask the adapter to end the
	// debuggee gracefully, leaving the session itself open for a restart.
	EndViaTerminate
)

// EndSession requests the adapter end the session (if the connection is
// still live) and tears down the transport. The request is written to the
// adapter by one scheduler pass before the connection is closed; EndSession
// does not wait for its response, and the connection is in StateEnded (or
// StateDied) when it returns.
func EndSession(s *Session, how EndSessionHow, terminateDebuggee bool) error {
	if !s.Conn.State().IsTerminal() {
		var err error
		switch how {
		case EndViaTerminate:
			_, err = Terminate(s.Conn, false, conn.NoDependency())
		default:
			_, err = Disconnect(s.Conn, terminateDebuggee, conn.NoDependency())
		}
		if err != nil {
			s.Conn.Logger().Warn("end session request failed to queue", slog.Any("err", err))
		} else if _, err := s.Conn.RunScheduler(); err != nil {
			s.Conn.Logger().Warn("end session request failed to send", slog.Any("err", err))
		}
	}
	return s.Conn.Close()
}
