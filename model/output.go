package model

import dap "github.com/google/go-dap"

// OutputEntry is one line (or chunk) of adapter-reported output, retained
// verbatim for the UI collaborator to render (spec.md §4.5, §6.4).
type OutputEntry struct {
	Category string
	Output   string
	Group    string
	Source   *dap.Source
	Line     int
}

// Output is the session's accumulated output log. Unlike every other entity
// in Store it is never cleared by a new session: spec.md §5 calls out that
// output must persist across session restarts, so a caller that restarts a
// session keeps the same *Output around instead of getting a fresh one from
// model.NewStore.
type Output struct {
	entries []OutputEntry
}

// NewOutput returns an empty output log.
func NewOutput() *Output {
	return &Output{}
}

// Append records one output event in arrival order.
func (o *Output) Append(body dap.OutputEventBody) {
	var src *dap.Source
	if body.Source.Path != "" || body.Source.SourceReference != 0 {
		s := body.Source
		src = &s
	}
	o.entries = append(o.entries, OutputEntry{
		Category: body.Category,
		Output:   body.Output,
		Group:    body.Group,
		Source:   src,
		Line:     body.Line,
	})
}

// All returns every output entry recorded so far, oldest first.
func (o *Output) All() []OutputEntry {
	out := make([]OutputEntry, len(o.entries))
	copy(out, o.entries)
	return out
}
