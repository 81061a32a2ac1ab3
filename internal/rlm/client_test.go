package rlm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richardwhiteii/ccrecall/internal/mcp/wire"
)

func TestCallTool_WhileDisconnected(t *testing.T) {
	client := NewClient(Config{Command: "true"})

	_, err := client.CallTool(context.Background(), "rlm_load_context", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, StateDisconnected, client.State())
}

func TestConnect_BoundedRetries(t *testing.T) {
	client := NewClient(Config{
		Command:     "/nonexistent-rlm-server-binary",
		MaxAttempts: 2,
		BaseBackoff: time.Millisecond,
	})

	start := time.Now()
	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to RLM after 2 attempts")
	assert.Equal(t, StateDisconnected, client.State())
	// One backoff interval between two attempts, nothing after the last
	assert.Less(t, time.Since(start), time.Second)
}

func TestConnect_ContextCancelled(t *testing.T) {
	client := NewClient(Config{
		Command:     "/nonexistent-rlm-server-binary",
		MaxAttempts: 3,
		BaseBackoff: time.Hour, // only reachable via ctx cancellation
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Connect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateDisconnected, client.State())
}

func TestClose_Tolerant(t *testing.T) {
	client := NewClient(Config{Command: "true"})
	// Close without ever connecting must not fail
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
}

func TestConfigDefaults(t *testing.T) {
	client := NewClient(Config{Command: "uv"})
	assert.Equal(t, 3, client.cfg.MaxAttempts)
	assert.Equal(t, time.Second, client.cfg.BaseBackoff)
}

func TestConnectionLost_StaleGenerationIsNoOp(t *testing.T) {
	client := NewClient(Config{Command: "true"})

	// Simulate a second connection established after a failed first attempt
	client.mu.Lock()
	client.gen = 2
	client.state = StateConnected
	client.mu.Unlock()

	ch := make(chan *wire.Message, 1)
	client.pendMu.Lock()
	client.pending[7] = ch
	client.pendMu.Unlock()

	// EOF from the first connection's readLoop must not touch the second
	client.connectionLost(1)
	assert.Equal(t, StateConnected, client.State())
	select {
	case <-ch:
		t.Fatal("pending call of the live connection was failed by a stale readLoop")
	default:
	}

	// EOF from the live connection tears it down for real
	client.connectionLost(2)
	assert.Equal(t, StateDisconnected, client.State())
	_, open := <-ch
	assert.False(t, open, "pending channel should be closed")
}

func TestDispatch_AfterFailPending(t *testing.T) {
	client := NewClient(Config{Command: "true"})

	ch := make(chan *wire.Message, 1)
	client.pendMu.Lock()
	client.pending[1] = ch
	client.pendMu.Unlock()

	client.failPending()

	// A late response for an already-failed call is dropped, never sent to
	// the closed channel
	assert.NotPanics(t, func() {
		client.dispatch(wire.NewResult(float64(1), map[string]interface{}{}))
	})
}

func TestDispatch_DeliversOnce(t *testing.T) {
	client := NewClient(Config{Command: "true"})

	ch := make(chan *wire.Message, 1)
	client.pendMu.Lock()
	client.pending[4] = ch
	client.pendMu.Unlock()

	msg := wire.NewResult(float64(4), map[string]interface{}{"ok": true})
	client.dispatch(msg)

	got := <-ch
	require.NotNil(t, got)
	assert.Equal(t, msg, got)

	// The entry is consumed: a duplicate response is dropped
	assert.NotPanics(t, func() { client.dispatch(msg) })
	client.pendMu.Lock()
	_, still := client.pending[4]
	client.pendMu.Unlock()
	assert.False(t, still)
}
