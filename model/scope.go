package model

import dap "github.com/google/go-dap"

// Scopes holds the scopes fetched for each stack frame id, invalidated
// together with that frame's stack trace.
type Scopes struct {
	byFrame map[int][]dap.Scope
}

// NewScopes returns an empty scope cache.
func NewScopes() *Scopes {
	return &Scopes{byFrame: make(map[int][]dap.Scope)}
}

// Set records the scopes response for frameID, returning whatever scopes
// were previously recorded for that frame so the caller can invalidate
// their VariablesReferences before the old values are lost (spec.md §3.4:
// a new scopes response supersedes the old variablesReference handles, it
// doesn't just add to them).
func (s *Scopes) Set(frameID int, scopes []dap.Scope) (previous []dap.Scope) {
	previous = s.byFrame[frameID]
	s.byFrame[frameID] = append([]dap.Scope(nil), scopes...)
	return previous
}

// Get returns the scopes previously fetched for frameID.
func (s *Scopes) Get(frameID int) ([]dap.Scope, bool) {
	scopes, ok := s.byFrame[frameID]
	return scopes, ok
}

// InvalidateFrame drops frameID's cached scopes.
func (s *Scopes) InvalidateFrame(frameID int) {
	delete(s.byFrame, frameID)
}

// InvalidateAll drops every frame's cached scopes.
func (s *Scopes) InvalidateAll() {
	s.byFrame = make(map[int][]dap.Scope)
}
