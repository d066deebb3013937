package handlers

import (
	dap "github.com/google/go-dap"

	"github.com/kory-oss/dap-core/conn"
	"github.com/kory-oss/dap-core/model"
	"github.com/kory-oss/dap-core/requests"
)

// handleResponse matches an inbound response to its expected-response
// entry, validates it, folds its body into the session's data model, and
// records it in the handled-responses log (spec.md §4.4).
func handleResponse(c *conn.Connection, store *model.Store, resp dap.ResponseMessage) error {
	base := resp.GetResponse()
	expected, ok := c.PopExpectedResponse(base.RequestSeq)
	if !ok {
		return conn.ErrRequestSeqMismatch
	}

	valErr := conn.ValidateResponse(resp, expected)
	c.RecordHandledResponse(base.Command, base.RequestSeq, valErr == nil)
	if valErr != nil {
		return valErr
	}

	applyResponseBody(c, store, expected, resp)
	return nil
}

func applyResponseBody(c *conn.Connection, store *model.Store, expected conn.ExpectedResponse, resp dap.ResponseMessage) {
	switch r := resp.(type) {
	case *dap.InitializeResponse:
		c.SetAdapterCapabilities(r.Body)
		c.SetState(conn.StatePartiallyInitialized)

	case *dap.LaunchResponse:
		c.SetState(conn.StateLaunched)

	case *dap.AttachResponse:
		c.SetState(conn.StateAttached)

	case *dap.SetBreakpointsResponse:
		if data, ok := expected.RequestData.(requests.SetBreakpointsRequestData); ok {
			key, err := model.KeyFor(data.Source)
			if err == nil {
				store.Breakpoints.ReplaceSource(key, r.Body.Breakpoints)
				store.SourceBPInputs.Set(key, data.Inputs)
				store.SourceBPInputs.ApplyResponse(key, r.Body.Breakpoints)
			}
		}

	case *dap.SetFunctionBreakpointsResponse:
		store.Breakpoints.ReplaceFunction(r.Body.Breakpoints)
		if inputs, ok := expected.RequestData.([]*dap.FunctionBreakpoint); ok {
			store.FunctionBPInputs.Set(inputs)
		}

	case *dap.SetDataBreakpointsResponse:
		store.Breakpoints.ReplaceData(r.Body.Breakpoints)
		if inputs, ok := expected.RequestData.([]*dap.DataBreakpoint); ok {
			store.DataBPInputs.Set(inputs)
		}

	case *dap.DataBreakpointInfoResponse:
		if args, ok := expected.RequestData.(dap.DataBreakpointInfoArguments); ok {
			q := model.DataBreakpointQuery{
				VariablesReference: args.VariablesReference,
				FrameID:            args.FrameId,
				Name:               args.Name,
			}
			store.DataBPInfo.Set(q, dataBreakpointGatingThread(store, args), r.Body)
		}

	case *dap.ThreadsResponse:
		removed := store.Threads.Replace(r.Body.Threads)
		store.OnThreadsReplaced(removed)

	case *dap.StackTraceResponse:
		if data, ok := expected.RequestData.(requests.StackTraceRequestData); ok {
			store.Stacks.SetPage(data.ThreadID, data.StartFrame, r.Body.StackFrames, r.Body.TotalFrames, r.Body.TotalFrames > 0)
			for _, frame := range r.Body.StackFrames {
				if frame.Source.Path != "" || frame.Source.SourceReference != 0 {
					_, _ = store.Sources.Observe(frame.Source)
				}
			}
			cascadeAfterStackTrace(c, store, data, r.Body)
		}

	case *dap.ScopesResponse:
		if data, ok := expected.RequestData.(requests.ScopesRequestData); ok {
			previous := store.Scopes.Set(data.FrameID, r.Body.Scopes)
			for _, scope := range previous {
				store.Variables.InvalidateRefs(scope.VariablesReference)
			}
			if data.Cascade {
				for _, scope := range r.Body.Scopes {
					if _, err := requests.Variables(c, scope.VariablesReference, conn.NoDependency()); err != nil {
						c.Logger().Warn("queue cascaded variables", "err", err, "scope", scope.Name)
					}
				}
			}
		}

	case *dap.VariablesResponse:
		if ref, ok := expected.RequestData.(int); ok {
			store.Variables.Set(ref, r.Body.Variables)
		}

	case *dap.ContinueResponse:
		threadID, _ := expected.RequestData.(int)
		if r.Body.AllThreadsContinued {
			store.Threads.MarkAllContinued()
		} else {
			store.Threads.MarkContinued(threadID)
		}
		store.OnContinued(threadID, r.Body.AllThreadsContinued)

	case *dap.NextResponse:
		threadID, _ := expected.RequestData.(int)
		store.Threads.MarkContinued(threadID)
		store.OnContinued(threadID, false)

	case *dap.StepInResponse:
		threadID, _ := expected.RequestData.(int)
		store.Threads.MarkContinued(threadID)
		store.OnContinued(threadID, false)

	case *dap.StepOutResponse:
		threadID, _ := expected.RequestData.(int)
		store.Threads.MarkContinued(threadID)
		store.OnContinued(threadID, false)

	case *dap.SourceResponse:
		if src, ok := expected.RequestData.(dap.Source); ok {
			if key, err := model.KeyFor(src); err == nil {
				store.Sources.SetContent(key, model.SourceContent{Content: r.Body.Content, MimeType: r.Body.MimeType})
			}
		}

	case *dap.ModulesResponse:
		store.Modules.ReplaceAll(r.Body.Modules)

	case *dap.SetVariableResponse:
		if data, ok := expected.RequestData.(requests.SetVariableRequestData); ok {
			store.Variables.UpdateValue(data.VariablesReference, data.Name, r.Body.Value, r.Body.VariablesReference, r.Body.Type)
		}

	case *dap.SetExpressionResponse:
		if data, ok := expected.RequestData.(requests.SetVariableRequestData); ok {
			store.Variables.UpdateValue(data.VariablesReference, data.Name, r.Body.Value, r.Body.VariablesReference, r.Body.Type)
		}

	case *dap.EvaluateResponse:
		if data, ok := expected.RequestData.(requests.EvaluateRequestData); ok {
			store.Evaluations.Set(data.FrameID, r.Body)
		}

	case *dap.DisconnectResponse:
		if !c.State().IsTerminal() {
			c.SetState(conn.StateEnded)
		}
	}
}

// cascadeAfterStackTrace auto-pages a thread's stack trace until it is
// complete (the frames received so far reach totalFrames, or the response
// omits totalFrames entirely) and, once complete,
// queues a scopes request per frame when the original request asked for
// drill-down (spec.md §4.5).
func cascadeAfterStackTrace(c *conn.Connection, store *model.Store, data requests.StackTraceRequestData, body dap.StackTraceResponseBody) {
	received := data.StartFrame + len(body.StackFrames)
	if body.TotalFrames > received {
		if _, err := requests.StackTrace(c, data.ThreadID, received, 0, data.Cascade, conn.NoDependency()); err != nil {
			c.Logger().Warn("queue paged stackTrace", "err", err, "threadId", data.ThreadID)
		}
		return
	}
	if !data.Cascade {
		return
	}
	for _, frame := range store.Stacks.Frames(data.ThreadID) {
		if _, err := requests.Scopes(c, frame.Id, true, conn.NoDependency()); err != nil {
			c.Logger().Warn("queue cascaded scopes", "err", err, "frameId", frame.Id)
		}
	}
}

// dataBreakpointGatingThread derives which thread a dataBreakpointInfo
// query's lifetime should be tied to (spec.md §3.3): a frame_expression
// query is gated on the thread that owns the frame; a variable query has
// no direct thread association in this model and is left indefinite; a
// global_expression query (neither field set) is always indefinite.
func dataBreakpointGatingThread(store *model.Store, args dap.DataBreakpointInfoArguments) int {
	if args.FrameId != 0 {
		if threadID, ok := store.Stacks.ThreadForFrame(args.FrameId); ok {
			return threadID
		}
	}
	return 0
}
