package requests_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	dap "github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kory-oss/dap-core/callback"
	"github.com/kory-oss/dap-core/conn"
	"github.com/kory-oss/dap-core/jsonvalue"
	"github.com/kory-oss/dap-core/model"
	"github.com/kory-oss/dap-core/requests"
	"github.com/kory-oss/dap-core/transport"
)

func newTestConn(t *testing.T, out *bytes.Buffer) *conn.Connection {
	t.Helper()
	pr, _ := io.Pipe()
	tr := transport.Stdio(context.Background(), pr, out, nil)
	t.Cleanup(func() { tr.Close() })
	return conn.New("test-session", tr, nil)
}

func TestInitializeQueuesBeforeAnyCapabilities(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateInitializing)

	seq, err := requests.Initialize(c, requests.ClientInfo{ClientID: "dap-core", AdapterID: "go"})
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	sent, err := c.RunScheduler()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Contains(t, out.String(), `"command":"initialize"`)
}

func TestLaunchMergesExtraArguments(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateInitialized)

	extra := jsonvalue.NewObject()
	extra.Set("mode", jsonvalue.String("debug"))
	cfg := requests.LaunchConfig{Request: "launch", Program: "/bin/echo", StopOnEntry: true, Extra: extra}
	seq, err := requests.Launch(c, cfg, conn.NoDependency())
	require.NoError(t, err)
	assert.NotZero(t, seq)

	_, err = c.RunScheduler()
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"program":"/bin/echo"`)
	assert.Contains(t, out.String(), `"stopOnEntry":true`)
	assert.Contains(t, out.String(), `"mode":"debug"`)
}

func TestStackTraceCarriesCorrelationData(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateLaunched)

	seq, err := requests.StackTrace(c, 7, 0, 20, false, conn.NoDependency())
	require.NoError(t, err)

	_, err = c.RunScheduler()
	require.NoError(t, err)

	er, ok := c.PopExpectedResponse(seq)
	require.True(t, ok)
	data, ok := er.RequestData.(requests.StackTraceRequestData)
	require.True(t, ok)
	assert.Equal(t, 7, data.ThreadID)
}

func TestStepBackGatedOnCapability(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateLaunched)

	_, err := requests.StepBack(c, 1, conn.NoDependency())
	assert.ErrorIs(t, err, conn.ErrAdapterDoesNotSupportRequest)

	c.SetAdapterCapabilities(dap.Capabilities{SupportsStepBack: true})
	seq, err := requests.StepBack(c, 1, conn.NoDependency())
	require.NoError(t, err)
	assert.NotZero(t, seq)
}

func TestCancelAndSetExceptionBreakpointsQueue(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateLaunched)
	c.SetAdapterCapabilities(dap.Capabilities{SupportsCancelRequest: true})

	_, err := requests.Cancel(c, 5, "", conn.NoDependency())
	require.NoError(t, err)

	_, err = requests.SetExceptionBreakpoints(c, []string{"uncaught"}, conn.NoDependency())
	require.NoError(t, err)

	sent, err := c.RunScheduler()
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
}

func TestEndSessionViaTerminateQueuesTerminateNotDisconnect(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateLaunched)
	c.SetAdapterCapabilities(dap.Capabilities{SupportsTerminateRequest: true})
	sess := &requests.Session{ID: "s", Conn: c, Store: model.NewStore(), Callbacks: callback.NewRegistry()}

	err := requests.EndSession(sess, requests.EndViaTerminate, false)
	require.NoError(t, err)

	_, err = c.RunScheduler()
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"command":"terminate"`)
	assert.NotContains(t, out.String(), `"command":"disconnect"`)
}

func TestEndSessionViaDisconnectQueuesDisconnect(t *testing.T) {
	var out bytes.Buffer
	c := newTestConn(t, &out)
	c.SetState(conn.StateLaunched)
	sess := &requests.Session{ID: "s", Conn: c, Store: model.NewStore(), Callbacks: callback.NewRegistry()}

	err := requests.EndSession(sess, requests.EndViaDisconnect, true)
	require.NoError(t, err)

	_, err = c.RunScheduler()
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"command":"disconnect"`)
}

func TestBeginSessionSurfacesSpawnError(t *testing.T) {
	// A spawn with an unresolvable binary fails fast rather than hanging;
	// this confirms BeginSession surfaces that error instead of panicking.
	_, err := requests.BeginSession(context.Background(), requests.AdapterSpec{
		Argv: []string{"/nonexistent/dap-adapter-binary"},
	}, requests.ClientInfo{ClientID: "dap-core"}, requests.LaunchConfig{Request: "launch"}, nil)
	require.Error(t, err)
}
