package model_test

import (
	"testing"

	dap "github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kory-oss/dap-core/model"
)

func TestThreadsReplaceThenIncrementalEvents(t *testing.T) {
	th := model.NewThreads()
	th.Replace([]dap.Thread{{Id: 1, Name: "main"}, {Id: 2, Name: "worker"}})
	assert.Equal(t, 2, th.Len())

	th.Started(3, "gc")
	assert.Equal(t, 3, th.Len())

	th.Exited(2)
	_, ok := th.Get(2)
	assert.False(t, ok)

	all := th.All()
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Id)
	assert.Equal(t, 3, all[1].Id)
}

func TestStacksPagedAssembly(t *testing.T) {
	s := model.NewStacks()
	s.SetPage(1, 0, []dap.StackFrame{{Id: 10, Name: "f0"}, {Id: 11, Name: "f1"}}, 5, true)
	s.SetPage(1, 2, []dap.StackFrame{{Id: 12, Name: "f2"}}, 5, true)

	frames := s.Frames(1)
	require.Len(t, frames, 3)
	assert.Equal(t, "f0", frames[0].Name)
	assert.Equal(t, "f2", frames[2].Name)

	total, ok := s.TotalFrames(1)
	require.True(t, ok)
	assert.Equal(t, 5, total)
}

func TestSourceKeyPrefersPath(t *testing.T) {
	key, err := model.KeyFor(dap.Source{Path: "/a/b.go", Name: "b.go", SourceReference: 7})
	require.NoError(t, err)
	assert.Equal(t, model.SourceKey{Path: "/a/b.go"}, key)

	key2, err := model.KeyFor(dap.Source{Name: "disasm", SourceReference: 7})
	require.NoError(t, err)
	assert.Equal(t, model.SourceKey{Name: "disasm", Reference: 7}, key2)

	_, err = model.KeyFor(dap.Source{})
	assert.Error(t, err)
}

func TestBreakpointsReplaceSourcePositional(t *testing.T) {
	b := model.NewBreakpoints()
	key := model.SourceKey{Path: "/a/b.go"}
	b.ReplaceSource(key, []dap.Breakpoint{
		{Id: 1, Verified: true, Line: 10},
		{Id: 2, Verified: false, Line: 20},
	})

	got := b.BySource(key)
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[0].Line)
	assert.Equal(t, 20, got[1].Line)

	bp, ok := b.ByID(1)
	require.True(t, ok)
	assert.True(t, bp.Verified)
}

func TestBreakpointsApplyEventUpdatesExisting(t *testing.T) {
	b := model.NewBreakpoints()
	key := model.SourceKey{Path: "/a/b.go"}
	b.ReplaceSource(key, []dap.Breakpoint{{Id: 1, Verified: false, Line: 10}})

	err := b.ApplyEvent("changed", dap.Breakpoint{Id: 1, Verified: true, Line: 10})
	require.NoError(t, err)

	bp, ok := b.ByID(1)
	require.True(t, ok)
	assert.True(t, bp.Verified)
}

func TestBreakpointsApplyEventRemovedUnknownErrors(t *testing.T) {
	b := model.NewBreakpoints()
	err := b.ApplyEvent("removed", dap.Breakpoint{Id: 99})
	assert.ErrorIs(t, err, model.ErrBreakpointDoesNotExist)
}

func TestStoreOnContinuedAllThreadsInvalidatesEverything(t *testing.T) {
	store := model.NewStore()
	store.Stacks.SetPage(1, 0, []dap.StackFrame{{Id: 10}}, 1, true)
	store.Scopes.Set(10, []dap.Scope{{Name: "Locals", VariablesReference: 100}})
	store.Variables.Set(100, []dap.Variable{{Name: "x", Value: "1"}})

	store.OnContinued(0, true)

	assert.Nil(t, store.Stacks.Frames(1))
	_, ok := store.Scopes.Get(10)
	assert.False(t, ok)
	_, ok = store.Variables.Get(100)
	assert.False(t, ok)
}

func TestModulesApplyEventLifecycle(t *testing.T) {
	m := model.NewModules()
	m.ApplyEvent("new", dap.Module{Id: "mod1", Name: "libfoo"})
	require.Len(t, m.All(), 1)

	m.ApplyEvent("changed", dap.Module{Id: "mod1", Name: "libfoo (loaded)"})
	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "libfoo (loaded)", all[0].Name)

	m.ApplyEvent("removed", dap.Module{Id: "mod1"})
	assert.Len(t, m.All(), 0)
}

func TestOutputAppendPreservesOrderAndSource(t *testing.T) {
	o := model.NewOutput()
	o.Append(dap.OutputEventBody{Category: "stdout", Output: "first\n"})
	o.Append(dap.OutputEventBody{Category: "stderr", Output: "second\n", Source: dap.Source{Path: "/a.go"}, Line: 3})

	all := o.All()
	require.Len(t, all, 2)
	assert.Equal(t, "first\n", all[0].Output)
	assert.Nil(t, all[0].Source)
	require.NotNil(t, all[1].Source)
	assert.Equal(t, "/a.go", all[1].Source.Path)
	assert.Equal(t, 3, all[1].Line)
}

func TestThreadsReplaceReportsRemovedIDs(t *testing.T) {
	th := model.NewThreads()
	th.Replace([]dap.Thread{{Id: 1, Name: "main"}, {Id: 2, Name: "worker"}})

	removed := th.Replace([]dap.Thread{{Id: 1, Name: "main"}})
	assert.Equal(t, []int{2}, removed)

	removed = th.Replace([]dap.Thread{{Id: 1, Name: "main"}})
	assert.Empty(t, removed)
}

func TestStoreOnThreadsReplacedDisposesRemovedThreadReferences(t *testing.T) {
	store := model.NewStore()
	store.Stacks.SetPage(2, 0, []dap.StackFrame{{Id: 20}}, 1, true)
	store.Scopes.Set(20, []dap.Scope{{Name: "Locals", VariablesReference: 200}})
	store.Variables.Set(200, []dap.Variable{{Name: "x", Value: "1"}})

	store.OnThreadsReplaced([]int{2})

	assert.Nil(t, store.Stacks.Frames(2))
	_, ok := store.Scopes.Get(20)
	assert.False(t, ok)
	_, ok = store.Variables.Get(200)
	assert.False(t, ok)
}

func TestScopesSetReturnsPreviousScopesForInvalidation(t *testing.T) {
	s := model.NewScopes()
	previous := s.Set(10, []dap.Scope{{Name: "Locals", VariablesReference: 100}})
	assert.Empty(t, previous)

	previous = s.Set(10, []dap.Scope{{Name: "Locals", VariablesReference: 101}})
	require.Len(t, previous, 1)
	assert.Equal(t, 100, previous[0].VariablesReference)

	current, ok := s.Get(10)
	require.True(t, ok)
	assert.Equal(t, 101, current[0].VariablesReference)
}

func TestEvaluationsSetGetInvalidate(t *testing.T) {
	e := model.NewEvaluations()
	_, ok := e.Get(5)
	assert.False(t, ok)

	e.Set(5, dap.EvaluateResponseBody{Result: "42"})
	body, ok := e.Get(5)
	require.True(t, ok)
	assert.Equal(t, "42", body.Result)

	e.InvalidateFrame(5)
	_, ok = e.Get(5)
	assert.False(t, ok)
}

func TestNewStoreRestartingCarriesOutputForward(t *testing.T) {
	output := model.NewOutput()
	output.Append(dap.OutputEventBody{Category: "stdout", Output: "before restart\n"})

	store := model.NewStoreRestarting(output)
	assert.Len(t, store.Output.All(), 1)
}
