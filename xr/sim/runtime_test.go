package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarkxr/xr"
)

func newTestRuntime(t *testing.T, warmup uint64) *Runtime {
	t.Helper()
	cfg := DefaultConfig()
	cfg.WarmupFrames = warmup
	rt, err := New(cfg)
	require.NoError(t, err)
	return rt
}

func TestRuntimeWarmup(t *testing.T) {
	rt := newTestRuntime(t, 2)
	rt.Begin()

	rt.Step()
	rt.Step()
	_, ok := rt.Frames().CurrentFrameState()
	assert.False(t, ok, "no frame state during warmup")

	fs := rt.Step()
	got, ok := rt.Frames().CurrentFrameState()
	require.True(t, ok)
	assert.Equal(t, fs, got)
	assert.Equal(t, uint64(3), got.Frame)
	assert.Equal(t, xr.Time(4*rt.Period()), got.PredictedDisplayTime)
	assert.True(t, got.ShouldRender)
	assert.Equal(t, uint64(3), rt.Input().SyncedFrame())
}

func TestRuntimeEndInvalidates(t *testing.T) {
	rt := newTestRuntime(t, 0)
	rt.Begin()
	rt.Step()
	rt.End()
	_, ok := rt.Frames().CurrentFrameState()
	assert.False(t, ok)
	assert.ErrorIs(t, rt.CheckHandles(rt.Instance(), rt.Session()), xr.ErrSessionNotRunning)
}

func TestRuntimeRunPublishesUntilCancelled(t *testing.T) {
	rt := newTestRuntime(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := rt.Frames().CurrentFrameState()
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, rt.Running())

	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, rt.Running())
}

func TestRuntimeCheckHandles(t *testing.T) {
	rt := newTestRuntime(t, 0)
	rt.Begin()
	require.NoError(t, rt.CheckHandles(rt.Instance(), rt.Session()))

	other := newTestRuntime(t, 0)
	assert.ErrorIs(t, rt.CheckHandles(other.Instance(), rt.Session()), xr.ErrInvalidHandle)
	assert.ErrorIs(t, rt.CheckHandles(rt.Instance(), other.Session()), xr.ErrInvalidHandle)

	fs := rt.Step()
	require.NoError(t, rt.CheckInput(rt.Input(), fs))
	assert.ErrorIs(t, rt.CheckInput(other.Input(), fs), xr.ErrInvalidHandle)
	fs.Frame++
	assert.ErrorIs(t, rt.CheckInput(rt.Input(), fs), xr.ErrActionsNotSynced)
}

func TestNewRejectsBadRefresh(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RefreshHz = 0
	_, err := New(cfg)
	assert.Error(t, err)
}
