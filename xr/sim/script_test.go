package sim

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarkxr/xr"
)

const waveScript = `
name: wave
loop: true
keyframes:
  - t: 1s
    left: {position: [0, 1, 0]}
    head: {position: [0, 1.6, 0]}
  - t: 0s
    left: {position: [-1, 1, 0]}
    right: {position: [1, 1, 0], orientation: [0, 0, 0, 1]}
  - t: 2s
    left: {position: [1, 1, 0], orientation: [0, 0.7071068, 0, 0.7071068]}
    drop: [right]
`

func TestParseScriptSortsKeyframes(t *testing.T) {
	s, err := ParseScript([]byte(waveScript))
	require.NoError(t, err)
	assert.Equal(t, "wave", s.Name)
	require.Len(t, s.Keyframes, 3)
	assert.Equal(t, time.Duration(0), s.Keyframes[0].T)
	assert.Equal(t, 2*time.Second, s.Duration())
}

func TestParseScriptRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no name":      "keyframes: [{t: 0s}]",
		"no keyframes": "name: empty",
		"bad drop":     "name: x\nkeyframes: [{t: 0s, drop: [tail]}]",
		"not yaml":     "name: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScript([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestScriptSampleInterpolates(t *testing.T) {
	s, err := ParseScript([]byte(waveScript))
	require.NoError(t, err)

	p, q, ok := s.Sample(DeviceLeft, 500*time.Millisecond)
	require.True(t, ok)
	assert.InDelta(t, -0.5, p.X, 1e-9)
	assert.InDelta(t, 1.0, q.Real, 1e-9)

	p, q, ok = s.Sample(DeviceLeft, 1500*time.Millisecond)
	require.True(t, ok)
	assert.InDelta(t, 0.5, p.X, 1e-9)
	// Halfway to a 90 degree yaw.
	assert.InDelta(t, math.Cos(math.Pi/8), q.Real, 1e-6)
	assert.InDelta(t, math.Sin(math.Pi/8), q.Jmag, 1e-6)
}

func TestScriptSampleHoldsAndDrops(t *testing.T) {
	s, err := ParseScript([]byte(waveScript))
	require.NoError(t, err)

	// Right is only defined at 0s and holds until dropped at 2s; the loop wraps 2s to 0s.
	p, _, ok := s.Sample(DeviceRight, 1900*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.X)

	s.Loop = false
	_, _, ok = s.Sample(DeviceRight, 3*time.Second)
	assert.False(t, ok)

	// Head first appears at 1s.
	_, _, ok = s.Sample(DeviceHead, 500*time.Millisecond)
	assert.False(t, ok)
	p, _, ok = s.Sample(DeviceHead, 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, 1.6, p.Y)
}

func TestScriptMarshalParses(t *testing.T) {
	s, err := ParseScript([]byte(waveScript))
	require.NoError(t, err)
	data, err := s.Marshal()
	require.NoError(t, err)
	back, err := ParseScript(data)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestReplayFollowsScript(t *testing.T) {
	s, err := ParseScript([]byte(waveScript))
	require.NoError(t, err)
	rt := newTestRuntime(t, 0)
	rt.Begin()
	r := NewReplay(rt, s, zerolog.Nop())

	// Frame 1 predicts 2 periods ahead.
	fs := rt.Step()
	p, err := r.GripPose(context.Background(), rt.Instance(), rt.Session(), fs, rt.Input(), xr.HandRight)
	require.NoError(t, err)
	assert.Equal(t, float32(1), p.Position.X)

	_, err = r.ViewPose(context.Background(), rt.Instance(), rt.Session(), fs, xr.ViewHead)
	assert.ErrorIs(t, err, xr.ErrPoseNotTracked)

	r.Swap(nil)
	_, err = r.GripPose(context.Background(), rt.Instance(), rt.Session(), fs, rt.Input(), xr.HandLeft)
	assert.ErrorIs(t, err, xr.ErrPoseNotTracked)
}

func TestReplayWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poses.yaml")
	require.NoError(t, os.WriteFile(path, []byte(waveScript), 0o644))
	s, err := LoadScript(path)
	require.NoError(t, err)

	rt := newTestRuntime(t, 0)
	r := NewReplay(rt, s, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, path) }()

	next := "name: still\nkeyframes:\n  - t: 0s\n    left: {position: [0, 2, 0]}\n"
	require.Eventually(t, func() bool {
		// Rewrite until the watcher has picked it up.
		_ = os.WriteFile(path, []byte(next), 0o644)
		return r.Script().Name == "still"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
