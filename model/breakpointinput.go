package model

import dap "github.com/google/go-dap"

// SourceBreakpointInputs tracks the user's pending source-breakpoint
// requests per source (spec.md §3.3's SourceBreakpoint input entity): the
// ordered list a caller last sent (or is about to send) in a setBreakpoints
// request, kept around across calls so the positionally-corresponding
// effective line the adapter echoes back can overwrite the user-supplied
// one in place (spec.md §3.4, §8 "Position-matched setBreakpoints").
type SourceBreakpointInputs struct {
	bySource map[SourceKey][]*dap.SourceBreakpoint
}

// NewSourceBreakpointInputs returns an empty tracker.
func NewSourceBreakpointInputs() *SourceBreakpointInputs {
	return &SourceBreakpointInputs{bySource: make(map[SourceKey][]*dap.SourceBreakpoint)}
}

// Set installs inputs as the pending breakpoint list for a source, as the
// caller is about to send to setBreakpoints. Ownership of the slice's
// pointee values transfers to this tracker, since ApplyResponse mutates
// their Line field in place.
func (s *SourceBreakpointInputs) Set(key SourceKey, inputs []*dap.SourceBreakpoint) {
	s.bySource[key] = inputs
}

// Get returns the current pending breakpoint list for a source, in the
// order a resend would need to preserve positional correspondence.
func (s *SourceBreakpointInputs) Get(key SourceKey) []*dap.SourceBreakpoint {
	return s.bySource[key]
}

// ApplyResponse overwrites each pending input's effective Line with the
// positionally-corresponding response breakpoint's Line, when the adapter
// supplied a non-zero one (spec.md §8 scenario 4). bps must be the same
// setBreakpoints response body that produced the Breakpoint entries stored
// via Breakpoints.ReplaceSource.
func (s *SourceBreakpointInputs) ApplyResponse(key SourceKey, bps []dap.Breakpoint) {
	inputs := s.bySource[key]
	n := len(inputs)
	if len(bps) < n {
		n = len(bps)
	}
	for i := 0; i < n; i++ {
		if bps[i].Line != 0 {
			inputs[i].Line = bps[i].Line
		}
	}
}

// FunctionBreakpointInputs tracks the user's pending function-breakpoint
// requests, keyed by function name (spec.md §3.3's FunctionBreakpoint
// input entity).
type FunctionBreakpointInputs struct {
	byName map[string]*dap.FunctionBreakpoint
	order  []string
}

// NewFunctionBreakpointInputs returns an empty tracker.
func NewFunctionBreakpointInputs() *FunctionBreakpointInputs {
	return &FunctionBreakpointInputs{byName: make(map[string]*dap.FunctionBreakpoint)}
}

// Set installs inputs as the complete pending function-breakpoint set.
func (f *FunctionBreakpointInputs) Set(inputs []*dap.FunctionBreakpoint) {
	f.byName = make(map[string]*dap.FunctionBreakpoint, len(inputs))
	f.order = f.order[:0]
	for _, in := range inputs {
		f.byName[in.Name] = in
		f.order = append(f.order, in.Name)
	}
}

// All returns the current pending function-breakpoint set in send order.
func (f *FunctionBreakpointInputs) All() []*dap.FunctionBreakpoint {
	out := make([]*dap.FunctionBreakpoint, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.byName[name])
	}
	return out
}

// DataBreakpointInputs tracks the user's pending data-breakpoint requests,
// keyed by dataId (spec.md §3.3's DataBreakpoint input entity).
type DataBreakpointInputs struct {
	byDataID map[string]*dap.DataBreakpoint
	order    []string
}

// NewDataBreakpointInputs returns an empty tracker.
func NewDataBreakpointInputs() *DataBreakpointInputs {
	return &DataBreakpointInputs{byDataID: make(map[string]*dap.DataBreakpoint)}
}

// Set installs inputs as the complete pending data-breakpoint set.
func (d *DataBreakpointInputs) Set(inputs []*dap.DataBreakpoint) {
	d.byDataID = make(map[string]*dap.DataBreakpoint, len(inputs))
	d.order = d.order[:0]
	for _, in := range inputs {
		d.byDataID[in.DataId] = in
		d.order = append(d.order, in.DataId)
	}
}

// All returns the current pending data-breakpoint set in send order.
func (d *DataBreakpointInputs) All() []*dap.DataBreakpoint {
	out := make([]*dap.DataBreakpoint, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.byDataID[id])
	}
	return out
}
