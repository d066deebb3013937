package model

// Store is the complete in-memory session data model for one debug
// session: every entity kind a DAP client accumulates, bundled so handlers
// can invalidate them together at the points the protocol requires.
type Store struct {
	Threads     *Threads
	Stacks      *Stacks
	Scopes      *Scopes
	Variables   *Variables
	Sources     *Sources
	Modules     *Modules
	Breakpoints *Breakpoints
	DataBPInfo  *DataBreakpointInfoCache
	Evaluations *Evaluations

	// Output is the accumulated output log. It is the one sub-model
	// NewStoreRestarting carries forward instead of resetting (spec.md §5:
	// "Output messages live in a dedicated arena that survives session
	// restarts").
	Output *Output

	// SourceBPInputs, FunctionBPInputs, and DataBPInputs hold the user's
	// pending breakpoint requests (spec.md §3.3), distinct from Breakpoints
	// (the adapter's view): these survive between setBreakpoints calls so a
	// caller can resend a source's full list with the adapter's last
	// effective lines folded back in.
	SourceBPInputs   *SourceBreakpointInputs
	FunctionBPInputs *FunctionBreakpointInputs
	DataBPInputs     *DataBreakpointInputs

	// ExitCode is the debuggee's exit code, recorded from an "exited" event
	// (spec.md §4.5). Nil until the debuggee has actually exited.
	ExitCode *int
}

// NewStore returns a store with every sub-model, including Output, freshly
// initialized. Use this for a session's first BeginSession.
func NewStore() *Store {
	return NewStoreRestarting(NewOutput())
}

// NewStoreRestarting returns a store with every sub-model freshly
// initialized except Output, which is carried over from the session being
// restarted (spec.md §5). Pass NewOutput() for a brand new session.
func NewStoreRestarting(output *Output) *Store {
	return &Store{
		Threads:          NewThreads(),
		Stacks:           NewStacks(),
		Scopes:           NewScopes(),
		Variables:        NewVariables(),
		Sources:          NewSources(),
		Modules:          NewModules(),
		Breakpoints:      NewBreakpoints(),
		DataBPInfo:       NewDataBreakpointInfoCache(),
		Evaluations:      NewEvaluations(),
		SourceBPInputs:   NewSourceBreakpointInputs(),
		FunctionBPInputs: NewFunctionBreakpointInputs(),
		DataBPInputs:     NewDataBreakpointInputs(),
		Output:           output,
	}
}

// OnContinued invalidates every stack-derived reference the session is
// holding for a thread that has resumed running: its stack trace, the
// scopes of every frame on that stack, and the variables reachable from
// those scopes. Per spec.md §3.4/§8 ("continue invalidates references")
// this must happen whenever a continue/next/stepIn/stepOut response or a
// continued event reports a thread (or, with AllThreads, every thread) is
// running again.
func (s *Store) OnContinued(threadID int, allThreads bool) {
	if allThreads {
		s.Stacks.InvalidateAll()
		s.Scopes.InvalidateAll()
		s.Variables.InvalidateAll()
		s.DataBPInfo.InvalidateAll()
		s.Evaluations.InvalidateAll()
		return
	}
	s.disposeThreadReferences(threadID)
}

// disposeThreadReferences drops every reference-lifetime-bound entry a
// single thread owns: its stack frames, the scopes keyed by those frames,
// the variables reachable from those scopes, the evaluate results cached
// per frame, and any data-breakpoint-info entries gated on the thread.
// Shared by OnContinued (a thread resuming) and Threads.Replace's removed
// ids (a thread disappearing from a threads response) — spec.md §3.4's
// reference-lifetime rule and thread-set-coherence invariant both require
// exactly this disposal, just triggered by different events.
func (s *Store) disposeThreadReferences(threadID int) {
	for _, frame := range s.Stacks.Frames(threadID) {
		if scopes, ok := s.Scopes.Get(frame.Id); ok {
			for _, scope := range scopes {
				s.Variables.InvalidateRefs(scope.VariablesReference)
			}
		}
		s.Scopes.InvalidateFrame(frame.Id)
		s.Evaluations.InvalidateFrame(frame.Id)
	}
	s.Stacks.InvalidateThread(threadID)
	s.DataBPInfo.InvalidateThread(threadID)
}

// OnStopped does not itself need to invalidate anything: a stopped event
// reports a thread has stopped, and any stack trace the session had cached
// for it from before this stop is already gone because the preceding
// resume already invalidated it via OnContinued. It exists as a named hook
// so handlers has one call per lifecycle event instead of special-casing
// which events need no model update.
func (s *Store) OnStopped() {}

// OnThreadsReplaced disposes every reference-lifetime-bound entry belonging
// to a thread id that existed before a threads response and is absent from
// it (spec.md §3.4/§8's thread-set-coherence invariant: "entries for
// removed threads fully disposed"). removedIDs is whatever Threads.Replace
// reports it dropped.
func (s *Store) OnThreadsReplaced(removedIDs []int) {
	for _, id := range removedIDs {
		s.disposeThreadReferences(id)
	}
}
