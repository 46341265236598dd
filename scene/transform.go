package scene

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a local translation/rotation/scale triple.
//
// Rotation is expected to be a unit quaternion. Scale is per-axis.
type Transform struct {
	Translation r3.Vec
	Rotation    quat.Number
	Scale       r3.Vec
}

// QuatIdentity is the identity rotation.
var QuatIdentity = quat.Number{Real: 1}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		Rotation: QuatIdentity,
		Scale:    r3.Vec{X: 1, Y: 1, Z: 1},
	}
}

// FromXYZ returns an identity transform translated to (x, y, z).
func FromXYZ(x, y, z float64) Transform {
	t := Identity()
	t.Translation = r3.Vec{X: x, Y: y, Z: z}
	return t
}

// FromPose returns a unit-scale transform with the given translation and rotation.
func FromPose(translation r3.Vec, rotation quat.Number) Transform {
	t := Identity()
	t.Translation = translation
	t.Rotation = rotation
	return t
}

// WithScale returns t with a uniform scale.
func (t Transform) WithScale(s float64) Transform {
	t.Scale = r3.Vec{X: s, Y: s, Z: s}
	return t
}

// normalized fills zero rotation and zero scale with identity values.
func (t Transform) normalized() Transform {
	if t.Rotation == (quat.Number{}) {
		t.Rotation = QuatIdentity
	}
	if t.Scale == (r3.Vec{}) {
		t.Scale = r3.Vec{X: 1, Y: 1, Z: 1}
	}
	return t
}

// Apply maps a point from t's local space into its parent space.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	scaled := r3.Vec{X: p.X * t.Scale.X, Y: p.Y * t.Scale.Y, Z: p.Z * t.Scale.Z}
	return r3.Add(t.Translation, r3.Rotation(t.Rotation).Rotate(scaled))
}

// Mul composes t (parent) with child, returning the child expressed in t's parent space.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Translation: t.Apply(child.Translation),
		Rotation:    quat.Mul(t.Rotation, child.Rotation),
		Scale: r3.Vec{
			X: t.Scale.X * child.Scale.X,
			Y: t.Scale.Y * child.Scale.Y,
			Z: t.Scale.Z * child.Scale.Z,
		},
	}
}

// Forward returns the -Z axis rotated by t.
func (t Transform) Forward() r3.Vec {
	return r3.Rotation(t.Rotation).Rotate(r3.Vec{Z: -1})
}

// Up returns the +Y axis rotated by t.
func (t Transform) Up() r3.Vec {
	return r3.Rotation(t.Rotation).Rotate(r3.Vec{Y: 1})
}

// Right returns the +X axis rotated by t.
func (t Transform) Right() r3.Vec {
	return r3.Rotation(t.Rotation).Rotate(r3.Vec{X: 1})
}
