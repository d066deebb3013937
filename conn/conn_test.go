package conn_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	dap "github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kory-oss/dap-core/conn"
	"github.com/kory-oss/dap-core/transport"
)

func newTestConn(t *testing.T, out *bytes.Buffer) *conn.Connection {
	t.Helper()
	pr, _ := io.Pipe()
	tr := transport.Stdio(context.Background(), pr, out, nil)
	t.Cleanup(func() { tr.Close() })
	return conn.New("test-session", tr, nil)
}

func TestQueueRequestBeforeInitializedRejectsNonHandshake(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateSpawned)

	_, err := c.QueueRequest(&dap.ThreadsRequest{
		Request: dap.Request{Command: "threads"},
	}, conn.NoDependency(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, conn.ErrAdapterNotDoneInitializing)
}

func TestQueueRequestGatedByCapability(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateLaunched)
	c.SetAdapterCapabilities(dap.Capabilities{SupportsDataBreakpoints: false})

	_, err := c.QueueRequest(&dap.SetDataBreakpointsRequest{
		Request: dap.Request{Command: "setDataBreakpoints"},
	}, conn.NoDependency(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, conn.ErrAdapterDoesNotSupportRequest)
}

func TestSchedulerSendsUnblockedRequestsAndSkipsBlocked(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateLaunched)

	blockedSeq, err := c.QueueRequest(&dap.StackTraceRequest{
		Request: dap.Request{Command: "stackTrace"},
	}, conn.AfterResponse("next", conn.HandledAny), nil)
	require.NoError(t, err)
	require.NotZero(t, blockedSeq)

	readySeq, err := c.QueueRequest(&dap.ThreadsRequest{
		Request: dap.Request{Command: "threads"},
	}, conn.NoDependency(), "threads-correlation")
	require.NoError(t, err)

	sent, err := c.RunScheduler()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	er, ok := c.PopExpectedResponse(readySeq)
	require.True(t, ok)
	assert.Equal(t, "threads", er.Command)
	assert.Equal(t, "threads-correlation", er.RequestData)

	_, ok = c.PopExpectedResponse(blockedSeq)
	assert.False(t, ok)

	assert.Contains(t, out.String(), `"command":"threads"`)
	assert.NotContains(t, out.String(), `"command":"stackTrace"`)

	c.RecordHandledResponse("next", 999, true)
	sent, err = c.RunScheduler()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	_, ok = c.PopExpectedResponse(blockedSeq)
	assert.True(t, ok)
}

func TestDependencyAfterSeqWaitsForResponseToBeHandled(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateLaunched)

	firstSeq, err := c.QueueRequest(&dap.PauseRequest{
		Request: dap.Request{Command: "pause"},
	}, conn.NoDependency(), nil)
	require.NoError(t, err)

	secondSeq, err := c.QueueRequest(&dap.ThreadsRequest{
		Request: dap.Request{Command: "threads"},
	}, conn.AfterSeq(firstSeq, conn.HandledAny), nil)
	require.NoError(t, err)

	// Sending firstSeq is not enough on its own: the second entry stays
	// queued until a handled response actually names firstSeq.
	sent, err := c.RunScheduler()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	_, ok := c.PopExpectedResponse(secondSeq)
	assert.False(t, ok)

	c.RecordHandledResponse("pause", firstSeq, true)
	sent, err = c.RunScheduler()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	_, ok = c.PopExpectedResponse(secondSeq)
	assert.True(t, ok)
}

func TestValidateResponseDetectsMismatch(t *testing.T) {
	expected := conn.ExpectedResponse{Seq: 5, Command: "next"}
	resp := &dap.NextResponse{
		Response: dap.Response{
			RequestSeq: 6,
			Success:    true,
			Command:    "next",
		},
	}
	err := conn.ValidateResponse(resp, expected)
	require.Error(t, err)
	assert.ErrorIs(t, err, conn.ErrRequestSeqMismatch)
}

func TestValidateResponseSurfacesAdapterFailureMessage(t *testing.T) {
	expected := conn.ExpectedResponse{Seq: 5, Command: "next"}
	resp := &dap.NextResponse{
		Response: dap.Response{
			RequestSeq: 5,
			Success:    false,
			Command:    "next",
			Message:    "thread is not paused",
		},
	}
	err := conn.ValidateResponse(resp, expected)
	require.Error(t, err)
	assert.ErrorIs(t, err, conn.ErrRequestFailed)
	assert.Contains(t, err.Error(), "thread is not paused")
}
