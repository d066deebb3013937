package transport_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	dap "github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kory-oss/dap-core/transport"
)

func TestPollThenReadOneReturnsSameFrame(t *testing.T) {
	pr, pw := io.Pipe()
	var out bytes.Buffer

	tr := transport.Stdio(context.Background(), pr, &out, nil)
	defer tr.Close()

	go func() {
		dap.WriteProtocolMessage(pw, &dap.InitializeRequest{
			Request: dap.Request{
				ProtocolMessage: dap.ProtocolMessage{Seq: 1, Type: "request"},
				Command:         "initialize",
			},
		})
	}()

	ready, err := tr.Poll(time.Second)
	require.NoError(t, err)
	require.True(t, ready)

	// Poll again should still report ready without losing the frame.
	ready, err = tr.Poll(time.Second)
	require.NoError(t, err)
	require.True(t, ready)

	msg, err := tr.ReadOne()
	require.NoError(t, err)
	req, ok := msg.(*dap.InitializeRequest)
	require.True(t, ok)
	assert.Equal(t, "initialize", req.Command)
}

func TestPollTimesOutWithoutData(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer

	tr := transport.Stdio(context.Background(), pr, &out, nil)
	defer tr.Close()

	ready, err := tr.Poll(20 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestWriteProducesFramedBytes(t *testing.T) {
	pr, _ := io.Pipe()
	var out bytes.Buffer

	tr := transport.Stdio(context.Background(), pr, &out, nil)
	defer tr.Close()

	err := tr.Write(&dap.InitializeRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Seq: 1, Type: "request"},
			Command:         "initialize",
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Content-Length:")
	assert.Contains(t, out.String(), `"command":"initialize"`)
}
