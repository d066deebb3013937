package model

import dap "github.com/google/go-dap"

// Origin records which request kind produced a Breakpoint, since DAP
// funnels four distinct request families (source, function, data,
// instruction breakpoints) plus an asynchronous breakpoint event into the
// same Breakpoint shape (spec.md §3.4).
type Origin int

const (
	OriginSource Origin = iota
	OriginFunction
	OriginData
	OriginInstruction
)

func (o Origin) String() string {
	switch o {
	case OriginSource:
		return "source"
	case OriginFunction:
		return "function"
	case OriginData:
		return "data"
	case OriginInstruction:
		return "instruction"
	default:
		return "unknown"
	}
}

// entry is one tracked breakpoint: the adapter's view (dap.Breakpoint) plus
// which request family created it and, for source breakpoints, which
// source it belongs to.
type entry struct {
	bp     dap.Breakpoint
	origin Origin
	source SourceKey
}

// Breakpoints tracks every breakpoint the session knows about across all
// four origins, keyed for two different access patterns: by adapter-
// assigned id (for breakpoint events, which only carry an id) and by
// source (for setBreakpoints, which replaces a source's entire breakpoint
// set positionally).
type Breakpoints struct {
	byID     map[int]*entry
	bySource map[SourceKey][]*entry
	function []*entry
	data     []*entry
	instr    []*entry
}

// NewBreakpoints returns an empty breakpoint tracker.
func NewBreakpoints() *Breakpoints {
	return &Breakpoints{
		byID:     make(map[int]*entry),
		bySource: make(map[SourceKey][]*entry),
	}
}

// ReplaceSource installs bps as the complete, position-matched breakpoint
// set for a source, as returned by a setBreakpoints response (spec.md §8
// "setBreakpoints line update": each response breakpoint corresponds
// positionally to the source breakpoint at the same index in the request).
func (b *Breakpoints) ReplaceSource(key SourceKey, bps []dap.Breakpoint) {
	for _, old := range b.bySource[key] {
		if old.bp.Id != 0 {
			delete(b.byID, old.bp.Id)
		}
	}
	entries := make([]*entry, len(bps))
	for i, bp := range bps {
		e := &entry{bp: bp, origin: OriginSource, source: key}
		entries[i] = e
		if bp.Id != 0 {
			b.byID[bp.Id] = e
		}
	}
	b.bySource[key] = entries
}

// replaceBucket is the shared implementation for the three non-positional
// (whole-list) breakpoint families.
func (b *Breakpoints) replaceBucket(bucket *[]*entry, origin Origin, bps []dap.Breakpoint) {
	for _, old := range *bucket {
		if old.bp.Id != 0 {
			delete(b.byID, old.bp.Id)
		}
	}
	entries := make([]*entry, len(bps))
	for i, bp := range bps {
		e := &entry{bp: bp, origin: origin}
		entries[i] = e
		if bp.Id != 0 {
			b.byID[bp.Id] = e
		}
	}
	*bucket = entries
}

// ReplaceFunction installs bps as the complete function-breakpoint set.
func (b *Breakpoints) ReplaceFunction(bps []dap.Breakpoint) {
	b.replaceBucket(&b.function, OriginFunction, bps)
}

// ReplaceData installs bps as the complete data-breakpoint set.
func (b *Breakpoints) ReplaceData(bps []dap.Breakpoint) {
	b.replaceBucket(&b.data, OriginData, bps)
}

// ReplaceInstruction installs bps as the complete instruction-breakpoint set.
func (b *Breakpoints) ReplaceInstruction(bps []dap.Breakpoint) {
	b.replaceBucket(&b.instr, OriginInstruction, bps)
}

// ApplyEvent applies a breakpoint event (reason "new", "changed", or
// "removed") to the tracked set. "new" and "changed" breakpoints without a
// prior id are appended to the bucket implied by their Source field (source
// breakpoints) or to the function bucket as a fallback, matching how
// adapters commonly report dynamically resolved breakpoints.
func (b *Breakpoints) ApplyEvent(reason string, bp dap.Breakpoint) error {
	if reason == "removed" {
		if bp.Id == 0 {
			return ErrNoBreakpointIDGiven
		}
		e, ok := b.byID[bp.Id]
		if !ok {
			return ErrBreakpointDoesNotExist
		}
		delete(b.byID, bp.Id)
		b.removeFromBucket(e)
		return nil
	}

	if bp.Id != 0 {
		if e, ok := b.byID[bp.Id]; ok {
			e.bp = bp
			return nil
		}
	}

	if bp.Source != nil {
		key, err := KeyFor(*bp.Source)
		if err != nil {
			return err
		}
		e := &entry{bp: bp, origin: OriginSource, source: key}
		b.bySource[key] = append(b.bySource[key], e)
		if bp.Id != 0 {
			b.byID[bp.Id] = e
		}
		return nil
	}

	e := &entry{bp: bp, origin: OriginFunction}
	b.function = append(b.function, e)
	if bp.Id != 0 {
		b.byID[bp.Id] = e
	}
	return nil
}

func (b *Breakpoints) removeFromBucket(e *entry) {
	switch e.origin {
	case OriginSource:
		bucket := b.bySource[e.source]
		b.bySource[e.source] = removeEntry(bucket, e)
	case OriginFunction:
		b.function = removeEntry(b.function, e)
	case OriginData:
		b.data = removeEntry(b.data, e)
	case OriginInstruction:
		b.instr = removeEntry(b.instr, e)
	}
}

func removeEntry(bucket []*entry, target *entry) []*entry {
	for i, e := range bucket {
		if e == target {
			return append(bucket[:i], bucket[i+1:]...)
		}
	}
	return bucket
}

// BySource returns the current breakpoint set for a source.
func (b *Breakpoints) BySource(key SourceKey) []dap.Breakpoint {
	return toBreakpoints(b.bySource[key])
}

// Function returns the current function breakpoint set.
func (b *Breakpoints) Function() []dap.Breakpoint { return toBreakpoints(b.function) }

// Data returns the current data breakpoint set.
func (b *Breakpoints) Data() []dap.Breakpoint { return toBreakpoints(b.data) }

// Instruction returns the current instruction breakpoint set.
func (b *Breakpoints) Instruction() []dap.Breakpoint { return toBreakpoints(b.instr) }

// ByID looks up a tracked breakpoint by its adapter-assigned id.
func (b *Breakpoints) ByID(id int) (dap.Breakpoint, bool) {
	e, ok := b.byID[id]
	if !ok {
		return dap.Breakpoint{}, false
	}
	return e.bp, true
}

func toBreakpoints(entries []*entry) []dap.Breakpoint {
	out := make([]dap.Breakpoint, len(entries))
	for i, e := range entries {
		out[i] = e.bp
	}
	return out
}
