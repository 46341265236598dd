package sim

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"quarkxr/xr"
)

// MotionConfig parameterizes the synthetic device motion.
type MotionConfig struct {
	// Radius of the circle each controller traces, in meters.
	Radius float64
	// Height of the controllers above the floor.
	Height float64
	// HeadHeight is the standing eye height.
	HeadHeight float64
	// Period of one full controller revolution.
	Period time.Duration
	// DropEvery makes the right controller lose tracking every N-th frame (0: never).
	DropEvery uint64
	// EyeSeparation is the interpupillary distance.
	EyeSeparation float64
}

// DefaultMotion returns a gentle figure a seated user could make.
func DefaultMotion() MotionConfig {
	return MotionConfig{
		Radius:        0.15,
		Height:        1.1,
		HeadHeight:    1.6,
		Period:        4 * time.Second,
		EyeSeparation: 0.064,
	}
}

// Motion is a PoseSource whose poses are a pure function of predicted display time.
type Motion struct {
	rt  *Runtime
	cfg MotionConfig
}

// NewMotion returns a motion source bound to rt.
func NewMotion(rt *Runtime, cfg MotionConfig) *Motion {
	if cfg.Period <= 0 {
		cfg.Period = DefaultMotion().Period
	}
	return &Motion{rt: rt, cfg: cfg}
}

func (m *Motion) phase(t xr.Time) float64 {
	return 2 * math.Pi * float64(t.Duration()%m.cfg.Period) / float64(m.cfg.Period)
}

// GripPose implements xr.PoseSource.
func (m *Motion) GripPose(_ context.Context, inst xr.Instance, sess xr.Session, fs xr.FrameState, in *xr.InputContext, hand xr.Hand) (xr.Posef, error) {
	if err := m.rt.CheckHandles(inst, sess); err != nil {
		return xr.Posef{}, err
	}
	if err := m.rt.CheckInput(in, fs); err != nil {
		return xr.Posef{}, err
	}
	if hand == xr.HandRight && m.cfg.DropEvery > 0 && fs.Frame%m.cfg.DropEvery == 0 {
		return xr.Posef{}, xr.ErrPoseNotTracked
	}

	phi := m.phase(fs.PredictedDisplayTime)
	side := -1.0
	if hand == xr.HandRight {
		side = 1.0
		phi = -phi
	}
	center := r3.Vec{X: side * 0.25, Y: m.cfg.Height, Z: -0.35}
	offset := r3.Vec{
		X: m.cfg.Radius * math.Cos(phi),
		Y: 0.5 * m.cfg.Radius * math.Sin(2*phi),
		Z: m.cfg.Radius * math.Sin(phi),
	}
	rot := r3.NewRotation(phi, r3.Vec{Y: 1})
	return nativePose(r3.Add(center, offset), quat.Number(rot)), nil
}

// ViewPose implements xr.ViewPoseSource.
func (m *Motion) ViewPose(_ context.Context, inst xr.Instance, sess xr.Session, fs xr.FrameState, view xr.View) (xr.Posef, error) {
	if err := m.rt.CheckHandles(inst, sess); err != nil {
		return xr.Posef{}, err
	}
	phi := m.phase(fs.PredictedDisplayTime)
	head := r3.Vec{Y: m.cfg.HeadHeight + 0.02*math.Sin(phi)}
	yaw := quat.Number(r3.NewRotation(0.3*math.Sin(phi), r3.Vec{Y: 1}))
	pos, rot := eyePose(head, yaw, view, m.cfg.EyeSeparation)
	return nativePose(pos, rot), nil
}

// eyePose offsets a head pose sideways for the eye views.
func eyePose(head r3.Vec, rot quat.Number, view xr.View, sep float64) (r3.Vec, quat.Number) {
	var dx float64
	switch view {
	case xr.ViewLeftEye:
		dx = -sep / 2
	case xr.ViewRightEye:
		dx = sep / 2
	default:
		return head, rot
	}
	return r3.Add(head, r3.Rotation(rot).Rotate(r3.Vec{X: dx})), rot
}

func nativePose(p r3.Vec, q quat.Number) xr.Posef {
	return xr.Posef{
		Orientation: xr.Quaternionf{X: float32(q.Imag), Y: float32(q.Jmag), Z: float32(q.Kmag), W: float32(q.Real)},
		Position:    xr.Vector3f{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)},
	}
}
