package model

import dap "github.com/google/go-dap"

type threadStack struct {
	frames      []dap.StackFrame
	totalFrames int
	haveTotal   bool
}

// Stacks holds each thread's stack trace, assembled page by page as
// stackTrace requests with increasing startFrame come back (spec.md §3.4
// "paged stackTrace"). A resume (Store.OnContinued) invalidates the
// previously fetched frames: the ids they carried are only valid until the
// debuggee next runs.
type Stacks struct {
	byThread map[int]*threadStack
}

// NewStacks returns an empty stack-trace cache.
func NewStacks() *Stacks {
	return &Stacks{byThread: make(map[int]*threadStack)}
}

// SetPage records one page of a thread's stack trace starting at
// startFrame. totalFrames, when the adapter supplied it, replaces the
// remembered total.
func (s *Stacks) SetPage(threadID, startFrame int, frames []dap.StackFrame, totalFrames int, haveTotal bool) {
	ts, ok := s.byThread[threadID]
	if !ok {
		ts = &threadStack{}
		s.byThread[threadID] = ts
	}
	need := startFrame + len(frames)
	if need > len(ts.frames) {
		grown := make([]dap.StackFrame, need)
		copy(grown, ts.frames)
		ts.frames = grown
	}
	copy(ts.frames[startFrame:], frames)
	if haveTotal {
		ts.totalFrames = totalFrames
		ts.haveTotal = true
	}
}

// Frames returns the frames fetched so far for threadID, in order.
func (s *Stacks) Frames(threadID int) []dap.StackFrame {
	ts, ok := s.byThread[threadID]
	if !ok {
		return nil
	}
	out := make([]dap.StackFrame, len(ts.frames))
	copy(out, ts.frames)
	return out
}

// TotalFrames returns the adapter-reported total frame count for threadID,
// if it has ever supplied one.
func (s *Stacks) TotalFrames(threadID int) (int, bool) {
	ts, ok := s.byThread[threadID]
	if !ok || !ts.haveTotal {
		return 0, false
	}
	return ts.totalFrames, true
}

// ThreadForFrame reports which thread owns frameID, if any thread's cached
// stack trace currently contains it. Used to tie a frame-scoped query (e.g.
// dataBreakpointInfo's frame_expression variant) to the thread whose resume
// should invalidate it.
func (s *Stacks) ThreadForFrame(frameID int) (int, bool) {
	for threadID, ts := range s.byThread {
		for _, f := range ts.frames {
			if f.Id == frameID {
				return threadID, true
			}
		}
	}
	return 0, false
}

// InvalidateThread drops threadID's cached stack trace, e.g. once that
// thread has been resumed.
func (s *Stacks) InvalidateThread(threadID int) {
	delete(s.byThread, threadID)
}

// InvalidateAll drops every thread's cached stack trace, used when a
// continue response or a continued event reports that all threads
// continued, so every stack-dependent reference the session was holding is
// now stale.
func (s *Stacks) InvalidateAll() {
	s.byThread = make(map[int]*threadStack)
}
