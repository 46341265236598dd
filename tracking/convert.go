package tracking

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"quarkxr/xr"
)

// Both the runtime and the scene are right-handed, +Y up and measured in meters, so
// conversion is a component-wise widening. Orientation is not renormalized.

// Vec3 converts a runtime position to scene space.
func Vec3(v xr.Vector3f) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Quat converts a runtime orientation to scene space.
func Quat(q xr.Quaternionf) quat.Number {
	return quat.Number{Real: float64(q.W), Imag: float64(q.X), Jmag: float64(q.Y), Kmag: float64(q.Z)}
}

// Pose converts a runtime pose to a scene translation and rotation.
func Pose(p xr.Posef) (r3.Vec, quat.Number) {
	return Vec3(p.Position), Quat(p.Orientation)
}
