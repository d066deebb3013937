package requests

import (
	dap "github.com/google/go-dap"
	"github.com/pkg/errors"

	"github.com/kory-oss/dap-core/conn"
)

// ClientInfo is what this client declares about itself in the initialize
// request.
type ClientInfo struct {
	ClientID                     string
	ClientName                   string
	AdapterID                    string
	Locale                       string
	LinesStartAt1                bool
	ColumnsStartAt1              bool
	SupportsVariableType         bool
	SupportsVariablePaging       bool
	SupportsRunInTerminalRequest bool
	SupportsMemoryReferences     bool
	SupportsProgressReporting    bool
	SupportsInvalidatedEvent     bool
}

// Initialize queues the handshake's opening request. It is the one request
// permitted before the connection has any adapter capabilities at all, so
// it bypasses capability gating by construction (conn's gating table has no
// entry for "initialize").
func Initialize(c *conn.Connection, info ClientInfo) (int, error) {
	args := dap.InitializeRequestArguments{
		ClientID:                     info.ClientID,
		ClientName:                   info.ClientName,
		AdapterID:                    info.AdapterID,
		Locale:                       info.Locale,
		LinesStartAt1:                info.LinesStartAt1,
		ColumnsStartAt1:              info.ColumnsStartAt1,
		PathFormat:                   "path",
		SupportsVariableType:         info.SupportsVariableType,
		SupportsVariablePaging:       info.SupportsVariablePaging,
		SupportsRunInTerminalRequest: info.SupportsRunInTerminalRequest,
		SupportsMemoryReferences:     info.SupportsMemoryReferences,
		SupportsProgressReporting:    info.SupportsProgressReporting,
		SupportsInvalidatedEvent:     info.SupportsInvalidatedEvent,
	}
	c.SetClientCapabilities(args)
	seq, err := c.QueueRequest(&dap.InitializeRequest{
		Request:   dap.Request{Command: "initialize"},
		Arguments: args,
	}, conn.NoDependency(), nil)
	return seq, errors.Wrap(err, "requests: initialize")
}

// Launch queues a launch request built from cfg, ready to send once the
// adapter has reported it finished handling initialize (the caller supplies
// that dependency explicitly, since exactly when launch is legal to send
// varies across adapters: some accept it immediately after initialize,
// others only after the "initialized" event).
func Launch(c *conn.Connection, cfg LaunchConfig, dep conn.Dependency) (int, error) {
	args, err := cfg.Arguments()
	if err != nil {
		return 0, errors.Wrap(err, "requests: launch arguments")
	}
	raw, err := args.Encode()
	if err != nil {
		return 0, errors.Wrap(err, "requests: encode launch arguments")
	}
	seq, err := c.QueueRequest(&dap.LaunchRequest{
		Request:   dap.Request{Command: "launch"},
		Arguments: raw,
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: launch")
}

// Attach queues an attach request built from cfg.
func Attach(c *conn.Connection, cfg LaunchConfig, dep conn.Dependency) (int, error) {
	args, err := cfg.Arguments()
	if err != nil {
		return 0, errors.Wrap(err, "requests: attach arguments")
	}
	raw, err := args.Encode()
	if err != nil {
		return 0, errors.Wrap(err, "requests: encode attach arguments")
	}
	seq, err := c.QueueRequest(&dap.AttachRequest{
		Request:   dap.Request{Command: "attach"},
		Arguments: raw,
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: attach")
}

// ConfigurationDone queues the request that tells the adapter the client has
// finished sending its initial breakpoint/exception-filter configuration.
func ConfigurationDone(c *conn.Connection, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.ConfigurationDoneRequest{
		Request: dap.Request{Command: "configurationDone"},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: configurationDone")
}

// SetBreakpointsRequestData retains the source and the caller's pending
// breakpoint inputs so the response handler can fold the adapter's
// effective lines back into them positionally (spec.md §3.4, §8).
type SetBreakpointsRequestData struct {
	Source dap.Source
	Inputs []*dap.SourceBreakpoint
}

// SetBreakpoints queues a setBreakpoints request for one source. breakpoints
// is retained by pointer so its Line fields can be updated in place once the
// response arrives (model.SourceBreakpointInputs.ApplyResponse).
func SetBreakpoints(c *conn.Connection, source dap.Source, breakpoints []*dap.SourceBreakpoint, dep conn.Dependency) (int, error) {
	args := make([]dap.SourceBreakpoint, len(breakpoints))
	for i, bp := range breakpoints {
		args[i] = *bp
	}
	seq, err := c.QueueRequest(&dap.SetBreakpointsRequest{
		Request: dap.Request{Command: "setBreakpoints"},
		Arguments: dap.SetBreakpointsArguments{
			Source:      source,
			Breakpoints: args,
		},
	}, dep, SetBreakpointsRequestData{Source: source, Inputs: breakpoints})
	return seq, errors.Wrap(err, "requests: setBreakpoints")
}

// SetFunctionBreakpoints queues a setFunctionBreakpoints request.
func SetFunctionBreakpoints(c *conn.Connection, breakpoints []*dap.FunctionBreakpoint, dep conn.Dependency) (int, error) {
	args := make([]dap.FunctionBreakpoint, len(breakpoints))
	for i, bp := range breakpoints {
		args[i] = *bp
	}
	seq, err := c.QueueRequest(&dap.SetFunctionBreakpointsRequest{
		Request:   dap.Request{Command: "setFunctionBreakpoints"},
		Arguments: dap.SetFunctionBreakpointsArguments{Breakpoints: args},
	}, dep, breakpoints)
	return seq, errors.Wrap(err, "requests: setFunctionBreakpoints")
}

// SetDataBreakpoints queues a setDataBreakpoints request.
func SetDataBreakpoints(c *conn.Connection, breakpoints []*dap.DataBreakpoint, dep conn.Dependency) (int, error) {
	args := make([]dap.DataBreakpoint, len(breakpoints))
	for i, bp := range breakpoints {
		args[i] = *bp
	}
	seq, err := c.QueueRequest(&dap.SetDataBreakpointsRequest{
		Request:   dap.Request{Command: "setDataBreakpoints"},
		Arguments: dap.SetDataBreakpointsArguments{Breakpoints: args},
	}, dep, breakpoints)
	return seq, errors.Wrap(err, "requests: setDataBreakpoints")
}

// DataBreakpointInfo queues a dataBreakpointInfo request.
func DataBreakpointInfo(c *conn.Connection, args dap.DataBreakpointInfoArguments, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.DataBreakpointInfoRequest{
		Request:   dap.Request{Command: "dataBreakpointInfo"},
		Arguments: args,
	}, dep, args)
	return seq, errors.Wrap(err, "requests: dataBreakpointInfo")
}

// Threads queues a threads request.
func Threads(c *conn.Connection, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.ThreadsRequest{Request: dap.Request{Command: "threads"}}, dep, nil)
	return seq, errors.Wrap(err, "requests: threads")
}

// StackTraceRequestData is the correlation payload handlers needs to place
// an inbound stackTrace response into the right page of model.Stacks, and
// to know whether to cascade into a scopes fetch per frame once the stack
// trace is complete (spec.md §4.5).
type StackTraceRequestData struct {
	ThreadID   int
	StartFrame int
	// Cascade, when true, tells the stackTrace response handler to queue a
	// scopes request for every frame once paging completes.
	Cascade bool
}

// StackTrace queues a stackTrace request for one page of a thread's stack.
// The response handler auto-pages until the stack is complete; when cascade
// is true it then queues a scopes request per frame.
func StackTrace(c *conn.Connection, threadID, startFrame, levels int, cascade bool, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.StackTraceRequest{
		Request: dap.Request{Command: "stackTrace"},
		Arguments: dap.StackTraceArguments{
			ThreadId:   threadID,
			StartFrame: startFrame,
			Levels:     levels,
		},
	}, dep, StackTraceRequestData{ThreadID: threadID, StartFrame: startFrame, Cascade: cascade})
	return seq, errors.Wrap(err, "requests: stackTrace")
}

// ScopesRequestData is the correlation payload handlers needs to place an
// inbound scopes response against the right frame, and to know whether to
// cascade into a variables fetch per scope.
type ScopesRequestData struct {
	FrameID int
	// Cascade, when true, tells the scopes response handler to queue a
	// variables request for every returned scope.
	Cascade bool
}

// Scopes queues a scopes request for one stack frame. When cascade is true,
// the response handler queues a variables request per returned scope.
func Scopes(c *conn.Connection, frameID int, cascade bool, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.ScopesRequest{
		Request:   dap.Request{Command: "scopes"},
		Arguments: dap.ScopesArguments{FrameId: frameID},
	}, dep, ScopesRequestData{FrameID: frameID, Cascade: cascade})
	return seq, errors.Wrap(err, "requests: scopes")
}

// Variables queues a variables request for one variablesReference.
func Variables(c *conn.Connection, variablesReference int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.VariablesRequest{
		Request:   dap.Request{Command: "variables"},
		Arguments: dap.VariablesArguments{VariablesReference: variablesReference},
	}, dep, variablesReference)
	return seq, errors.Wrap(err, "requests: variables")
}

// Continue queues a continue request.
func Continue(c *conn.Connection, threadID int, singleThread bool, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.ContinueRequest{
		Request:   dap.Request{Command: "continue"},
		Arguments: dap.ContinueArguments{ThreadId: threadID, SingleThread: singleThread},
	}, dep, threadID)
	return seq, errors.Wrap(err, "requests: continue")
}

// Next queues a next (step-over) request.
func Next(c *conn.Connection, threadID int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.NextRequest{
		Request:   dap.Request{Command: "next"},
		Arguments: dap.NextArguments{ThreadId: threadID},
	}, dep, threadID)
	return seq, errors.Wrap(err, "requests: next")
}

// StepIn queues a stepIn request.
func StepIn(c *conn.Connection, threadID int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.StepInRequest{
		Request:   dap.Request{Command: "stepIn"},
		Arguments: dap.StepInArguments{ThreadId: threadID},
	}, dep, threadID)
	return seq, errors.Wrap(err, "requests: stepIn")
}

// StepOut queues a stepOut request.
func StepOut(c *conn.Connection, threadID int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.StepOutRequest{
		Request:   dap.Request{Command: "stepOut"},
		Arguments: dap.StepOutArguments{ThreadId: threadID},
	}, dep, threadID)
	return seq, errors.Wrap(err, "requests: stepOut")
}

// Pause queues a pause request.
func Pause(c *conn.Connection, threadID int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.PauseRequest{
		Request:   dap.Request{Command: "pause"},
		Arguments: dap.PauseArguments{ThreadId: threadID},
	}, dep, threadID)
	return seq, errors.Wrap(err, "requests: pause")
}

// Disconnect queues a disconnect request.
func Disconnect(c *conn.Connection, terminateDebuggee bool, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.DisconnectRequest{
		Request:   dap.Request{Command: "disconnect"},
		Arguments: dap.DisconnectArguments{TerminateDebuggee: terminateDebuggee},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: disconnect")
}

// Source queues a source request for src's content.
func Source(c *conn.Connection, src dap.Source, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.SourceRequest{
		Request: dap.Request{Command: "source"},
		Arguments: dap.SourceArguments{
			Source:          &src,
			SourceReference: src.SourceReference,
		},
	}, dep, src)
	return seq, errors.Wrap(err, "requests: source")
}

// Modules queues a modules request.
func Modules(c *conn.Connection, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.ModulesRequest{Request: dap.Request{Command: "modules"}}, dep, nil)
	return seq, errors.Wrap(err, "requests: modules")
}

// SetVariableRequestData is the correlation payload the setVariable and
// setExpression response handlers use to find which cached variable to
// update in place (spec.md §4.5: "update the value field of the named
// child variable in the cached container").
type SetVariableRequestData struct {
	VariablesReference int
	Name               string
}

// SetVariable queues a setVariable request.
func SetVariable(c *conn.Connection, variablesReference int, name, value string, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.SetVariableRequest{
		Request: dap.Request{Command: "setVariable"},
		Arguments: dap.SetVariableArguments{
			VariablesReference: variablesReference,
			Name:               name,
			Value:              value,
		},
	}, dep, SetVariableRequestData{VariablesReference: variablesReference, Name: name})
	return seq, errors.Wrap(err, "requests: setVariable")
}

// SetExpression queues a setExpression request. containerRef identifies the
// cached variables container the expression names a child of (the UI knows
// this because it is the one that displayed the expression as a variable
// row in the first place); it is how the response handler locates the same
// cached entry setVariable would update.
func SetExpression(c *conn.Connection, expression string, frameID int, value string, containerRef int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.SetExpressionRequest{
		Request: dap.Request{Command: "setExpression"},
		Arguments: dap.SetExpressionArguments{
			Expression: expression,
			FrameId:    frameID,
			Value:      value,
		},
	}, dep, SetVariableRequestData{VariablesReference: containerRef, Name: expression})
	return seq, errors.Wrap(err, "requests: setExpression")
}

// EvaluateRequestData retains the originating frame id so the response
// handler can store the result under it, the way SetVariableRequestData
// retains a variable container for setVariable/setExpression (SPEC_FULL.md
// §3 point 3).
type EvaluateRequestData struct {
	FrameID int
}

// Evaluate queues an evaluate request.
func Evaluate(c *conn.Connection, expression string, frameID int, context string, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.EvaluateRequest{
		Request: dap.Request{Command: "evaluate"},
		Arguments: dap.EvaluateArguments{
			Expression: expression,
			FrameId:    frameID,
			Context:    context,
		},
	}, dep, EvaluateRequestData{FrameID: frameID})
	return seq, errors.Wrap(err, "requests: evaluate")
}

// ReadMemory queues a readMemory request. Acknowledge-only in the core
// (SPEC_FULL.md §3 point 3): the body is handed back to the caller via the
// generic response path, nothing here interprets the returned bytes.
func ReadMemory(c *conn.Connection, memoryReference string, offset, count int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.ReadMemoryRequest{
		Request: dap.Request{Command: "readMemory"},
		Arguments: dap.ReadMemoryArguments{
			MemoryReference: memoryReference,
			Offset:          offset,
			Count:           count,
		},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: readMemory")
}

// WriteMemory queues a writeMemory request (data is the base64-encoded
// payload DAP's wire format expects). Acknowledge-only in the core, same as
// ReadMemory — it exists alongside ReadMemory so the same capability-gated
// surface isn't read-only.
func WriteMemory(c *conn.Connection, memoryReference string, offset int, allowPartial bool, data string, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.WriteMemoryRequest{
		Request: dap.Request{Command: "writeMemory"},
		Arguments: dap.WriteMemoryArguments{
			MemoryReference: memoryReference,
			Offset:          offset,
			AllowPartial:    allowPartial,
			Data:            data,
		},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: writeMemory")
}

// Disassemble queues a disassemble request. Acknowledge-only in the core,
// same as ReadMemory.
func Disassemble(c *conn.Connection, memoryReference string, offset, instructionOffset, instructionCount int, resolveSymbols bool, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.DisassembleRequest{
		Request: dap.Request{Command: "disassemble"},
		Arguments: dap.DisassembleArguments{
			MemoryReference:   memoryReference,
			Offset:            offset,
			InstructionOffset: instructionOffset,
			InstructionCount:  instructionCount,
			ResolveSymbols:    resolveSymbols,
		},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: disassemble")
}

// Terminate queues a DAP terminate request — distinct from Disconnect: DAP
// defines terminate as asking the adapter to end the debuggee gracefully
// while keeping the session itself alive for a possible restart, whereas
// disconnect tears the whole session down (spec.md §4.7's end_session
// `how ∈ {terminate, disconnect}`).
func Terminate(c *conn.Connection, restart bool, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.TerminateRequest{
		Request:   dap.Request{Command: "terminate"},
		Arguments: dap.TerminateArguments{Restart: restart},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: terminate")
}

// StepBack queues a stepBack request (reverse debugging; spec.md §1 declares
// this surface but leaves it acknowledge-only: side effects arrive as
// ordinary stopped/continued events, nothing here is special-cased).
func StepBack(c *conn.Connection, threadID int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.StepBackRequest{
		Request:   dap.Request{Command: "stepBack"},
		Arguments: dap.StepBackArguments{ThreadId: threadID},
	}, dep, threadID)
	return seq, errors.Wrap(err, "requests: stepBack")
}

// ReverseContinue queues a reverseContinue request; acknowledge-only (§4.5).
func ReverseContinue(c *conn.Connection, threadID int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.ReverseContinueRequest{
		Request:   dap.Request{Command: "reverseContinue"},
		Arguments: dap.ReverseContinueArguments{ThreadId: threadID},
	}, dep, threadID)
	return seq, errors.Wrap(err, "requests: reverseContinue")
}

// Goto queues a goto request against a target returned by gotoTargets;
// acknowledge-only (§4.5).
func Goto(c *conn.Connection, threadID, targetID int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.GotoRequest{
		Request:   dap.Request{Command: "goto"},
		Arguments: dap.GotoArguments{ThreadId: threadID, TargetId: targetID},
	}, dep, threadID)
	return seq, errors.Wrap(err, "requests: goto")
}

// GotoTargets queues a gotoTargets request for a source location.
func GotoTargets(c *conn.Connection, source dap.Source, line int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.GotoTargetsRequest{
		Request:   dap.Request{Command: "gotoTargets"},
		Arguments: dap.GotoTargetsArguments{Source: source, Line: line},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: gotoTargets")
}

// RestartFrame queues a restartFrame request; acknowledge-only (§4.5).
func RestartFrame(c *conn.Connection, frameID int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.RestartFrameRequest{
		Request:   dap.Request{Command: "restartFrame"},
		Arguments: dap.RestartFrameArguments{FrameId: frameID},
	}, dep, frameID)
	return seq, errors.Wrap(err, "requests: restartFrame")
}

// TerminateThreads queues a terminateThreads request; acknowledge-only (§4.5).
func TerminateThreads(c *conn.Connection, threadIDs []int, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.TerminateThreadsRequest{
		Request:   dap.Request{Command: "terminateThreads"},
		Arguments: dap.TerminateThreadsArguments{ThreadIds: threadIDs},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: terminateThreads")
}

// Cancel queues a cancel request against a previously sent request or
// progress id; acknowledge-only (§4.5) — cancellation is cooperative, the
// core does not abort any in-flight I/O itself (spec.md §5).
func Cancel(c *conn.Connection, requestID int, progressID string, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.CancelRequest{
		Request:   dap.Request{Command: "cancel"},
		Arguments: dap.CancelArguments{RequestId: requestID, ProgressId: progressID},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: cancel")
}

// Restart queues a restart request. Most adapters that advertise
// supportsRestartRequest reuse whatever launch/attach configuration they
// already hold, so this core sends a bare restart rather than re-deriving
// one (spec.md §4.5: acknowledge-only, side effects arrive as the usual
// initialized/stopped event sequence that follows a fresh launch).
func Restart(c *conn.Connection, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.RestartRequest{
		Request: dap.Request{Command: "restart"},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: restart")
}

// SetExceptionBreakpoints queues a setExceptionBreakpoints request.
// Acknowledge-only: spec.md §9(c) lists this among the commands this core
// must not invent semantics for beyond forwarding and acknowledging.
func SetExceptionBreakpoints(c *conn.Connection, filters []string, dep conn.Dependency) (int, error) {
	seq, err := c.QueueRequest(&dap.SetExceptionBreakpointsRequest{
		Request:   dap.Request{Command: "setExceptionBreakpoints"},
		Arguments: dap.SetExceptionBreakpointsArguments{Filters: filters},
	}, dep, nil)
	return seq, errors.Wrap(err, "requests: setExceptionBreakpoints")
}
