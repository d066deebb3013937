package model

import dap "github.com/google/go-dap"

// DataBreakpointQuery identifies what a dataBreakpointInfo request asked
// about: either a variable in some scope (VariablesReference, Name) or an
// expression evaluated in a stack frame (FrameID, Name).
type DataBreakpointQuery struct {
	VariablesReference int
	FrameID            int
	Name               string
}

type dataBPInfoEntry struct {
	body dap.DataBreakpointInfoResponseBody
	// gatingThread is the thread this entry's lifetime is tied to
	// (spec.md §3.3's "while_thread_suspended(tid)"); 0 means indefinite:
	// the entry survives any single thread's resume and is dropped only by
	// InvalidateAll.
	gatingThread int
}

// DataBreakpointInfoCache remembers dataBreakpointInfo responses so a
// setDataBreakpoints request built from one doesn't need to re-query the
// adapter for the same variable twice in a row.
type DataBreakpointInfoCache struct {
	byQuery map[DataBreakpointQuery]dataBPInfoEntry
}

// NewDataBreakpointInfoCache returns an empty cache.
func NewDataBreakpointInfoCache() *DataBreakpointInfoCache {
	return &DataBreakpointInfoCache{byQuery: make(map[DataBreakpointQuery]dataBPInfoEntry)}
}

// Set records the response body for a query, tying its lifetime to
// gatingThread when it is non-zero. The response handler passes a non-zero
// thread only for a frame-scoped query whose frame is in the stack cache;
// variable-scoped and global_expression queries are stored with 0 and are
// not tied to any thread.
func (d *DataBreakpointInfoCache) Set(q DataBreakpointQuery, gatingThread int, body dap.DataBreakpointInfoResponseBody) {
	d.byQuery[q] = dataBPInfoEntry{body: body, gatingThread: gatingThread}
}

// Get returns a previously cached response body for a query.
func (d *DataBreakpointInfoCache) Get(q DataBreakpointQuery) (dap.DataBreakpointInfoResponseBody, bool) {
	e, ok := d.byQuery[q]
	return e.body, ok
}

// InvalidateThread drops every entry whose lifetime was tied to threadID,
// called once that thread resumes (spec.md §3.3).
func (d *DataBreakpointInfoCache) InvalidateThread(threadID int) {
	for q, e := range d.byQuery {
		if e.gatingThread == threadID {
			delete(d.byQuery, q)
		}
	}
}

// InvalidateAll drops every cached entry, since a VariablesReference or
// FrameID embedded in a query key stops being meaningful once the stack
// that produced it is gone.
func (d *DataBreakpointInfoCache) InvalidateAll() {
	d.byQuery = make(map[DataBreakpointQuery]dataBPInfoEntry)
}
