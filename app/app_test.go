package app

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarkxr/config"
	"quarkxr/hal"
	"quarkxr/scene"
	"quarkxr/tracking"
	"quarkxr/xr"
)

type fakeCanvas struct {
	w, h     int
	cmds     int
	texts    []string
	frame    []string
	presents int
}

func (c *fakeCanvas) Width() int                                { return c.w }
func (c *fakeCanvas) Height() int                               { return c.h }
func (c *fakeCanvas) Clear(color.RGBA)                          { c.cmds = 1; c.texts = c.texts[:0] }
func (c *fakeCanvas) Line(_, _, _, _, _ float32, _ color.RGBA)  { c.cmds++ }
func (c *fakeCanvas) FillRect(_, _, _, _ float32, _ color.RGBA) { c.cmds++ }
func (c *fakeCanvas) FillCircle(_, _, _ float32, _ color.RGBA)  { c.cmds++ }
func (c *fakeCanvas) Text(_, _ int, s string)                   { c.cmds++; c.texts = append(c.texts, s) }
func (c *fakeCanvas) Present() {
	c.presents++
	c.frame = append(c.frame[:0], c.texts...)
}

type fakeKeyboard struct{ ch chan hal.KeyEvent }

func (k fakeKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

type fakeTime struct{ ch chan uint64 }

func (t fakeTime) Ticks() <-chan uint64 { return t.ch }

type fakeHAL struct {
	canvas *fakeCanvas
	kbd    fakeKeyboard
	time   fakeTime
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		canvas: &fakeCanvas{w: 320, h: 240},
		kbd:    fakeKeyboard{ch: make(chan hal.KeyEvent, 16)},
		time:   fakeTime{ch: make(chan uint64, 16)},
	}
}

func (h *fakeHAL) Display() hal.Display { return h }
func (h *fakeHAL) Input() hal.Input     { return h }
func (h *fakeHAL) Time() hal.Time       { return h.time }
func (h *fakeHAL) Canvas() hal.Canvas   { return h.canvas }
func (h *fakeHAL) Keyboard() hal.Keyboard {
	return h.kbd
}

func (h *fakeHAL) release(code hal.KeyCode) {
	h.kbd.ch <- hal.KeyEvent{Code: code, Press: true}
	h.kbd.ch <- hal.KeyEvent{Code: code, Press: false}
}

func lockstepConfig() config.Config {
	cfg := config.Default()
	cfg.Runtime.Lockstep = true
	cfg.Runtime.WarmupFrames = 2
	cfg.Scene.GridWidth = 3
	cfg.Scene.GridHeight = 2
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) (*App, *fakeHAL) {
	t.Helper()
	h := newFakeHAL()
	a, err := New(context.Background(), h, cfg, Deps{Log: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, h
}

func findRole(t *testing.T, w *scene.World, r scene.Role) scene.Entity {
	t.Helper()
	ents := w.WithRole(r)
	require.Len(t, ents, 1, "role %s", r)
	return ents[0]
}

func TestAppTracksControllersUnderRoot(t *testing.T) {
	a, h := newTestApp(t, lockstepConfig())
	w := a.World()

	// Warmup frames publish nothing; the sync pass skips.
	require.NoError(t, a.Step())
	assert.True(t, a.Synchronizer().LastReport().Skipped)

	for i := 0; i < 4; i++ {
		require.NoError(t, a.Step())
	}
	rep := a.Synchronizer().LastReport()
	require.False(t, rep.Skipped)
	assert.Equal(t, uint64(5), rep.Frame.Frame)

	root, err := tracking.FindRoot(w)
	require.NoError(t, err)
	for _, r := range []scene.Role{scene.RoleLeftController, scene.RoleRightController, scene.RoleHMD} {
		e := findRole(t, w, r)
		p, ok := w.Parent(e)
		assert.True(t, ok)
		assert.Equal(t, root, p, "%s parent", r)

		rr, ok := rep.Result(r)
		require.True(t, ok)
		assert.True(t, rr.Updated, "%s: %v", r, rr.Err)
	}

	// The left controller's transform is the motion pose for this frame.
	want, err := a.source.GripPose(context.Background(), a.rt.Instance(), a.rt.Session(), rep.Frame, a.rt.Input(), xr.HandLeft)
	require.NoError(t, err)
	tf, _ := w.Transform(findRole(t, w, scene.RoleLeftController))
	assert.InDelta(t, float64(want.Position.X), tf.Translation.X, 1e-9)
	assert.InDelta(t, float64(want.Position.Y), tf.Translation.Y, 1e-9)
	assert.InDelta(t, float64(want.Orientation.W), tf.Rotation.Real, 1e-9)

	assert.Len(t, w.Query(Cube), 6)
	assert.Equal(t, 5, h.canvas.presents)
	assert.NotEmpty(t, h.canvas.frame)
}

func TestAppGridKeys(t *testing.T) {
	a, h := newTestApp(t, lockstepConfig())
	require.NoError(t, a.Step())
	require.Len(t, a.World().Query(Cube), 6)

	h.release(hal.KeyUp)
	h.release(hal.KeyLeft)
	require.NoError(t, a.Step())
	assert.Equal(t, 2, a.Grid().Width)
	assert.Equal(t, 3, a.Grid().Height)
	assert.Len(t, a.World().Query(Cube), 6, "resizing does not respawn")

	h.release(hal.KeyR)
	require.NoError(t, a.Step())
	assert.Len(t, a.World().Query(Cube), 6)
	assert.Equal(t, 6, a.cubes)

	h.release(hal.KeyDown)
	h.release(hal.KeyDown)
	h.release(hal.KeyR)
	require.NoError(t, a.Step())
	assert.Len(t, a.World().Query(Cube), 2)
}

func TestGridKeyClamps(t *testing.T) {
	g := newGrid(gridMax-1, 1, 0.25)
	g.Key(keyGridWider)
	g.Key(keyGridWider)
	assert.Equal(t, gridMax, g.Width)

	g.Key(keyGridShorter)
	g.Key(keyGridShorter)
	assert.Equal(t, 0, g.Height)

	w := scene.NewWorld()
	g.Key(keyGridRespawn)
	n, ok := g.Spawn(w)
	assert.True(t, ok)
	assert.Zero(t, n)
}

func TestAppQuitKey(t *testing.T) {
	a, h := newTestApp(t, lockstepConfig())
	h.release(hal.KeyEscape)
	assert.ErrorIs(t, a.Step(), hal.ErrQuit)
}

func TestAppWithoutControllersReportsArity(t *testing.T) {
	cfg := lockstepConfig()
	cfg.Scene.Controllers = false
	cfg.Runtime.WarmupFrames = 0
	a, _ := newTestApp(t, cfg)
	require.NoError(t, a.Step())

	rep := a.Synchronizer().LastReport()
	rr, ok := rep.Result(scene.RoleLeftController)
	require.True(t, ok)
	var ae *tracking.ArityError
	require.ErrorAs(t, rr.Err, &ae)
	assert.Equal(t, 0, ae.Count)

	hmd, ok := rep.Result(scene.RoleHMD)
	require.True(t, ok)
	assert.True(t, hmd.Updated)
}

func TestAppReplaysScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poses.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: still
keyframes:
  - t: 0s
    left: {position: [-0.2, 1.2, -0.3]}
    right: {position: [0.2, 1.2, -0.3]}
    head: {position: [0, 1.7, 0]}
`), 0o644))

	cfg := lockstepConfig()
	cfg.Runtime.WarmupFrames = 0
	cfg.Runtime.Script = path
	a, _ := newTestApp(t, cfg)
	require.NoError(t, a.Step())

	tf, _ := a.World().Transform(findRole(t, a.World(), scene.RoleRightController))
	assert.InDelta(t, 0.2, tf.Translation.X, 1e-6)
	g, _ := a.World().GlobalTransform(findRole(t, a.World(), scene.RoleHMD))
	assert.InDelta(t, 1.7, g.Translation.Y, 1e-6)
}

func TestAppRejectsMissingScript(t *testing.T) {
	cfg := lockstepConfig()
	cfg.Runtime.Script = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), newFakeHAL(), cfg, Deps{Log: zerolog.Nop()})
	assert.Error(t, err)
}

func TestAppFreeRunningRuntime(t *testing.T) {
	cfg := config.Default()
	cfg.Runtime.RefreshHz = 200
	cfg.Runtime.WarmupFrames = 0
	a, _ := newTestApp(t, cfg)

	require.Eventually(t, func() bool {
		if err := a.Step(); err != nil {
			return false
		}
		return !a.Synchronizer().LastReport().Skipped
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, a.Close())
	assert.False(t, a.Runtime().Running())
}
