package model

import dap "github.com/google/go-dap"

// Evaluations caches the most recent evaluate result for each frame id an
// evaluate request named (SPEC_FULL.md §3 point 3): unlike setVariable/
// setExpression, which update a child of an existing Variables container,
// an evaluate result has no container of its own to join, so it is stored
// under the originating frame id instead.
type Evaluations struct {
	byFrame map[int]dap.EvaluateResponseBody
}

// NewEvaluations returns an empty evaluate-result cache.
func NewEvaluations() *Evaluations {
	return &Evaluations{byFrame: make(map[int]dap.EvaluateResponseBody)}
}

// Set records body as the latest evaluate result for frameID, replacing any
// prior result for the same frame.
func (e *Evaluations) Set(frameID int, body dap.EvaluateResponseBody) {
	e.byFrame[frameID] = body
}

// Get returns the most recent evaluate result recorded for frameID.
func (e *Evaluations) Get(frameID int) (dap.EvaluateResponseBody, bool) {
	body, ok := e.byFrame[frameID]
	return body, ok
}

// InvalidateFrame drops frameID's cached evaluate result, called when the
// owning stack frame itself is invalidated by a resume (spec.md §3.4).
func (e *Evaluations) InvalidateFrame(frameID int) {
	delete(e.byFrame, frameID)
}

// InvalidateAll drops every cached evaluate result.
func (e *Evaluations) InvalidateAll() {
	e.byFrame = make(map[int]dap.EvaluateResponseBody)
}
