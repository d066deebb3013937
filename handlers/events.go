package handlers

import (
	dap "github.com/google/go-dap"

	"github.com/kory-oss/dap-core/conn"
	"github.com/kory-oss/dap-core/model"
	"github.com/kory-oss/dap-core/requests"
)

// handleEvent folds an inbound event's body into the session's data model
// and records it in the handled-events log.
func handleEvent(c *conn.Connection, store *model.Store, evt dap.EventMessage) error {
	name := conn.EventName(evt)
	applyEvent(c, store, evt)
	c.RecordHandledEvent(name, evt.GetSeq())
	return nil
}

func applyEvent(c *conn.Connection, store *model.Store, evt dap.EventMessage) {
	switch e := evt.(type) {
	case *dap.InitializedEvent:
		c.SetState(conn.StateInitialized)

	case *dap.StoppedEvent:
		if e.Body.AllThreadsStopped {
			store.Threads.MarkAllStopped(e.Body)
		} else {
			store.Threads.MarkStopped(e.Body.ThreadId, e.Body)
		}
		store.OnStopped()
		// DAP requires a fresh threads request on every stop: a stopped
		// thread id may be one the client has never seen (spec.md §4.5).
		if _, err := requests.Threads(c, conn.NoDependency()); err != nil {
			c.Logger().Warn("queue threads after stopped", "err", err)
		}

	case *dap.ContinuedEvent:
		if e.Body.AllThreadsContinued {
			store.Threads.MarkAllContinued()
		} else {
			store.Threads.MarkContinued(e.Body.ThreadId)
		}
		store.OnContinued(e.Body.ThreadId, e.Body.AllThreadsContinued)

	case *dap.ExitedEvent:
		// The debuggee process has exited; the connection itself may stay
		// alive until a terminated event or disconnect response follows.
		exitCode := e.Body.ExitCode
		store.ExitCode = &exitCode

	case *dap.TerminatedEvent:
		c.SetTerminated()
		if e.Body.Restart != nil {
			c.SetRestartPayload(e.Body.Restart)
		}

	case *dap.ThreadEvent:
		switch e.Body.Reason {
		case "started":
			store.Threads.Started(e.Body.ThreadId, "")
		case "exited":
			store.Threads.Exited(e.Body.ThreadId)
		}

	case *dap.BreakpointEvent:
		_ = store.Breakpoints.ApplyEvent(e.Body.Reason, e.Body.Breakpoint)

	case *dap.ModuleEvent:
		store.Modules.ApplyEvent(e.Body.Reason, e.Body.Module)

	case *dap.LoadedSourceEvent:
		_, _ = store.Sources.Observe(e.Body.Source)

	case *dap.OutputEvent:
		store.Output.Append(e.Body)
		c.Logger().Info("adapter output", "category", e.Body.Category, "output", e.Body.Output)
	}
}
