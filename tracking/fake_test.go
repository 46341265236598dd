package tracking

import (
	"context"
	"errors"

	"quarkxr/scene"
	"quarkxr/xr"
)

var errNotTracked = errors.New("fake: not tracked")

type gripCall struct {
	inst  xr.Instance
	sess  xr.Session
	frame xr.FrameState
	in    *xr.InputContext
	hand  xr.Hand
}

// fakeSource returns fixed grip poses per hand; missing hands fail closed.
type fakeSource struct {
	grips map[xr.Hand]xr.Posef
	calls []gripCall
}

func (f *fakeSource) GripPose(_ context.Context, inst xr.Instance, sess xr.Session, fs xr.FrameState, in *xr.InputContext, hand xr.Hand) (xr.Posef, error) {
	f.calls = append(f.calls, gripCall{inst, sess, fs, in, hand})
	p, ok := f.grips[hand]
	if !ok {
		return xr.Posef{}, errNotTracked
	}
	return p, nil
}

// fakeViewSource adds head and eye poses.
type fakeViewSource struct {
	fakeSource
	views map[xr.View]xr.Posef
}

func (f *fakeViewSource) ViewPose(_ context.Context, _ xr.Instance, _ xr.Session, _ xr.FrameState, v xr.View) (xr.Posef, error) {
	p, ok := f.views[v]
	if !ok {
		return xr.Posef{}, errNotTracked
	}
	return p, nil
}

func poseAt(x, y, z float32) xr.Posef {
	return xr.Posef{Orientation: xr.QuaternionIdentity, Position: xr.Vector3f{X: x, Y: y, Z: z}}
}

func readyFrames(frame uint64) *xr.FrameStateSource {
	src := xr.NewFrameStateSource()
	src.Publish(xr.FrameState{Frame: frame, PredictedDisplayTime: xr.Time(frame) * 11_111_111, ShouldRender: true})
	return src
}

func spawnController(w *scene.World, role scene.Role) scene.Entity {
	return w.Spawn(scene.Bundle{
		Name:      role.String(),
		Caps:      scene.Trackable | scene.Controller,
		Role:      role,
		Transform: scene.Identity(),
	})
}

func testHandles() Handles {
	inst := xr.NewInstance("test")
	sess, _ := xr.NewSession(inst)
	in, _ := xr.NewInputContext(sess, "gameplay", xr.OculusTouchProfile)
	return Handles{Instance: inst, Session: sess, Input: in}
}
