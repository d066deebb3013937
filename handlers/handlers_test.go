package handlers_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	dap "github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kory-oss/dap-core/callback"
	"github.com/kory-oss/dap-core/conn"
	"github.com/kory-oss/dap-core/handlers"
	"github.com/kory-oss/dap-core/model"
	"github.com/kory-oss/dap-core/requests"
	"github.com/kory-oss/dap-core/transport"
)

func newTestSession(t *testing.T) (*requests.Session, *io.PipeWriter, *bytes.Buffer) {
	t.Helper()
	pr, pw := io.Pipe()
	var out bytes.Buffer
	tr := transport.Stdio(context.Background(), pr, &out, nil)
	t.Cleanup(func() { tr.Close() })
	c := conn.New("test-session", tr, nil)
	return &requests.Session{
		ID:        "test-session",
		Conn:      c,
		Store:     model.NewStore(),
		Callbacks: callback.NewRegistry(),
	}, pw, &out
}

func TestDispatchOneInitializeResponseAdvancesState(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Conn.SetState(conn.StateInitializing)

	seq, err := requests.Initialize(sess.Conn, requests.ClientInfo{ClientID: "dap-core"})
	require.NoError(t, err)
	_, err = sess.Conn.RunScheduler()
	require.NoError(t, err)

	err = handlers.DispatchOne(sess, &dap.InitializeResponse{
		Response: dap.Response{RequestSeq: seq, Success: true, Command: "initialize"},
		Body:     dap.Capabilities{SupportsFunctionBreakpoints: true},
	})
	require.NoError(t, err)
	assert.Equal(t, conn.StatePartiallyInitialized, sess.Conn.State())
	assert.True(t, sess.Conn.AdapterCapabilities().SupportsFunctionBreakpoints)
}

func TestDispatchOneInitializedEventAdvancesState(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Conn.SetState(conn.StatePartiallyInitialized)

	err := handlers.DispatchOne(sess, &dap.InitializedEvent{
		Event: dap.Event{ProtocolMessage: dap.ProtocolMessage{Seq: 2}, Event: "initialized"},
	})
	require.NoError(t, err)
	assert.Equal(t, conn.StateInitialized, sess.Conn.State())
}

func TestDispatchOneThreadsResponsePopulatesStore(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Conn.SetState(conn.StateLaunched)

	seq, err := requests.Threads(sess.Conn, conn.NoDependency())
	require.NoError(t, err)
	_, err = sess.Conn.RunScheduler()
	require.NoError(t, err)

	err = handlers.DispatchOne(sess, &dap.ThreadsResponse{
		Response: dap.Response{RequestSeq: seq, Success: true, Command: "threads"},
		Body:     dap.ThreadsResponseBody{Threads: []dap.Thread{{Id: 1, Name: "main"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Store.Threads.Len())
}

func TestDispatchOneContinueResponseInvalidatesStack(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Conn.SetState(conn.StateLaunched)
	sess.Store.Stacks.SetPage(1, 0, []dap.StackFrame{{Id: 5}}, 1, true)

	seq, err := requests.Continue(sess.Conn, 1, false, conn.NoDependency())
	require.NoError(t, err)
	_, err = sess.Conn.RunScheduler()
	require.NoError(t, err)

	err = handlers.DispatchOne(sess, &dap.ContinueResponse{
		Response: dap.Response{RequestSeq: seq, Success: true, Command: "continue"},
		Body:     dap.ContinueResponseBody{AllThreadsContinued: true},
	})
	require.NoError(t, err)
	assert.Nil(t, sess.Store.Stacks.Frames(1))
}

func TestDispatchOneThreadsResponseDisposesRemovedThreadReferences(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Conn.SetState(conn.StateLaunched)
	sess.Store.Threads.Started(1, "main")
	sess.Store.Threads.Started(2, "worker")
	sess.Store.Stacks.SetPage(2, 0, []dap.StackFrame{{Id: 20}}, 1, true)
	sess.Store.Scopes.Set(20, []dap.Scope{{Name: "Locals", VariablesReference: 200}})
	sess.Store.Variables.Set(200, []dap.Variable{{Name: "x", Value: "1"}})

	seq, err := requests.Threads(sess.Conn, conn.NoDependency())
	require.NoError(t, err)
	_, err = sess.Conn.RunScheduler()
	require.NoError(t, err)

	err = handlers.DispatchOne(sess, &dap.ThreadsResponse{
		Response: dap.Response{RequestSeq: seq, Success: true, Command: "threads"},
		Body:     dap.ThreadsResponseBody{Threads: []dap.Thread{{Id: 1, Name: "main"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, sess.Store.Threads.Len())
	assert.Nil(t, sess.Store.Stacks.Frames(2))
	_, ok := sess.Store.Scopes.Get(20)
	assert.False(t, ok)
	_, ok = sess.Store.Variables.Get(200)
	assert.False(t, ok)
}

func TestDispatchOneScopesResponseInvalidatesPriorVariables(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Conn.SetState(conn.StateLaunched)
	sess.Store.Scopes.Set(30, []dap.Scope{{Name: "Locals", VariablesReference: 300}})
	sess.Store.Variables.Set(300, []dap.Variable{{Name: "x", Value: "1"}})

	seq, err := requests.Scopes(sess.Conn, 30, false, conn.NoDependency())
	require.NoError(t, err)
	_, err = sess.Conn.RunScheduler()
	require.NoError(t, err)

	err = handlers.DispatchOne(sess, &dap.ScopesResponse{
		Response: dap.Response{RequestSeq: seq, Success: true, Command: "scopes"},
		Body:     dap.ScopesResponseBody{Scopes: []dap.Scope{{Name: "Locals", VariablesReference: 301}}},
	})
	require.NoError(t, err)

	_, ok := sess.Store.Variables.Get(300)
	assert.False(t, ok)
	scopes, ok := sess.Store.Scopes.Get(30)
	require.True(t, ok)
	assert.Equal(t, 301, scopes[0].VariablesReference)
}

func TestDispatchOneEvaluateResponseStoresResultUnderFrame(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Conn.SetState(conn.StateLaunched)

	seq, err := requests.Evaluate(sess.Conn, "x+1", 7, "watch", conn.NoDependency())
	require.NoError(t, err)
	_, err = sess.Conn.RunScheduler()
	require.NoError(t, err)

	err = handlers.DispatchOne(sess, &dap.EvaluateResponse{
		Response: dap.Response{RequestSeq: seq, Success: true, Command: "evaluate"},
		Body:     dap.EvaluateResponseBody{Result: "43"},
	})
	require.NoError(t, err)

	body, ok := sess.Store.Evaluations.Get(7)
	require.True(t, ok)
	assert.Equal(t, "43", body.Result)
}

func TestDispatchOneReverseRequestRepliesNotImplemented(t *testing.T) {
	sess, _, out := newTestSession(t)
	err := handlers.DispatchOne(sess, &dap.RunInTerminalRequest{
		Request: dap.Request{ProtocolMessage: dap.ProtocolMessage{Seq: 9}, Command: "runInTerminal"},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"success":false`)
}

func TestTickDrainsAllAvailableFramesBeforeScheduling(t *testing.T) {
	sess, pw, _ := newTestSession(t)
	sess.Conn.SetState(conn.StateInitializing)

	seq, err := requests.Initialize(sess.Conn, requests.ClientInfo{ClientID: "dap-core"})
	require.NoError(t, err)

	go func() {
		dap.WriteProtocolMessage(pw, &dap.InitializeResponse{
			Response: dap.Response{ProtocolMessage: dap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "initialize"},
		})
		dap.WriteProtocolMessage(pw, &dap.InitializedEvent{
			Event: dap.Event{ProtocolMessage: dap.ProtocolMessage{Type: "event"}, Event: "initialized"},
		})
	}()

	dispatched, err := handlers.Tick(sess, time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, dispatched, 1)
}
