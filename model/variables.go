package model

import (
	"sort"

	dap "github.com/google/go-dap"
	"github.com/samber/lo"
)

// Variables holds the children fetched for each variablesReference a
// scopes/variables/evaluate response has handed out. A variablesReference
// of 0 means "no children"; this cache is never consulted for those.
type Variables struct {
	byRef map[int][]dap.Variable
}

// NewVariables returns an empty variable cache.
func NewVariables() *Variables {
	return &Variables{byRef: make(map[int][]dap.Variable)}
}

// Set records the variables response for a variablesReference.
func (v *Variables) Set(ref int, vars []dap.Variable) {
	v.byRef[ref] = append([]dap.Variable(nil), vars...)
}

// Get returns the variables previously fetched for ref, in the order the
// adapter returned them.
func (v *Variables) Get(ref int) ([]dap.Variable, bool) {
	vars, ok := v.byRef[ref]
	return vars, ok
}

// SortedByReference returns ref's variables with any child that itself
// exposes a nested variablesReference grouped after the leaf values,
// ordered by that nested reference — a stable display order independent of
// whatever order the adapter happened to emit them in.
func (v *Variables) SortedByReference(ref int) []dap.Variable {
	vars, ok := v.byRef[ref]
	if !ok {
		return nil
	}
	leaves, expandable := lo.FilterReject(vars, func(vr dap.Variable, _ int) bool {
		return vr.VariablesReference == 0
	})
	sort.SliceStable(expandable, func(i, j int) bool {
		return expandable[i].VariablesReference < expandable[j].VariablesReference
	})
	return append(append([]dap.Variable(nil), leaves...), expandable...)
}

// UpdateValue updates the named child of ref's cached variable list in
// place, as a setVariable/setExpression response directs (spec.md §4.5).
// newRef, when non-zero, replaces the child's VariablesReference (the
// adapter may report a different nested reference for the new value); an
// empty newType leaves Type untouched. Reports whether a matching child was
// found.
func (v *Variables) UpdateValue(ref int, name, value string, newRef int, newType string) bool {
	vars, ok := v.byRef[ref]
	if !ok {
		return false
	}
	for i := range vars {
		if vars[i].Name != name {
			continue
		}
		vars[i].Value = value
		if newRef != 0 {
			vars[i].VariablesReference = newRef
		}
		if newType != "" {
			vars[i].Type = newType
		}
		return true
	}
	return false
}

// InvalidateRefs drops the given variablesReferences from the cache, used
// when a scopes response supersedes a frame's earlier scopes and when a
// thread's stack-dependent references are disposed.
func (v *Variables) InvalidateRefs(refs ...int) {
	for _, ref := range refs {
		delete(v.byRef, ref)
	}
}

// InvalidateAll drops every cached variable listing.
func (v *Variables) InvalidateAll() {
	v.byRef = make(map[int][]dap.Variable)
}
