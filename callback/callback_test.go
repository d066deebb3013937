package callback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kory-oss/dap-core/callback"
	"github.com/kory-oss/dap-core/conn"
)

func TestFireReadyFiresOnceAndRemoves(t *testing.T) {
	r := callback.NewRegistry()
	var got any
	calls := 0
	r.Register(callback.CallIf{Kind: callback.CallIfResponse, Command: "threads"}, conn.HandledAny, "payload-1", func(payload any) {
		calls++
		got = payload
	}, 0)

	fired := r.FireReady([]conn.HandledResponse{{Command: "threads", RequestSeq: 1, Success: true, At: 5}}, nil)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "payload-1", got)
	assert.Equal(t, 0, r.Pending())

	// A second tick with the same handled response must not refire it.
	fired = r.FireReady([]conn.HandledResponse{{Command: "threads", RequestSeq: 1, Success: true, At: 5}}, nil)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, calls)
}

func TestFireReadyRespectsHandledAfterQueueing(t *testing.T) {
	r := callback.NewRegistry()
	calls := 0
	r.Register(callback.CallIf{Kind: callback.CallIfEvent, Event: "stopped"}, conn.HandledAfterQueueing, nil, func(any) { calls++ }, 10)

	// An event handled before registration must not satisfy the callback.
	fired := r.FireReady(nil, []conn.HandledEvent{{Name: "stopped", At: 3}})
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, r.Pending())

	fired = r.FireReady(nil, []conn.HandledEvent{{Name: "stopped", At: 11}})
	require.Equal(t, 1, fired)
	assert.Equal(t, 1, calls)
}

func TestCancelRemovesWithoutFiring(t *testing.T) {
	r := callback.NewRegistry()
	id := r.Register(callback.CallIf{Kind: callback.CallIfResponse, Command: "next"}, conn.HandledAny, nil, func(any) {
		t.Fatal("cancelled callback must not fire")
	}, 0)

	ok := r.Cancel(id)
	assert.True(t, ok)

	fired := r.FireReady([]conn.HandledResponse{{Command: "next", At: 1}}, nil)
	assert.Equal(t, 0, fired)
}
