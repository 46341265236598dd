package tracking

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"quarkxr/xr"
)

func TestConvertMapsComponents(t *testing.T) {
	p := xr.Posef{
		Orientation: xr.Quaternionf{X: 0.5, Y: -0.5, Z: 0.5, W: 0.5},
		Position:    xr.Vector3f{X: 1, Y: -2, Z: 3.25},
	}
	pos, rot := Pose(p)
	if want := (r3.Vec{X: 1, Y: -2, Z: 3.25}); pos != want {
		t.Fatalf("position = %+v, want %+v", pos, want)
	}
	if want := (quat.Number{Real: 0.5, Imag: 0.5, Jmag: -0.5, Kmag: 0.5}); rot != want {
		t.Fatalf("rotation = %+v, want %+v", rot, want)
	}
}

func TestConvertIsPure(t *testing.T) {
	p := xr.Posef{
		Orientation: xr.Quaternionf{X: 0.1, Y: 0.2, Z: 0.3, W: 0.9273618},
		Position:    xr.Vector3f{X: 0.1, Y: 1.7, Z: -0.3333333},
	}
	pos1, rot1 := Pose(p)
	pos2, rot2 := Pose(p)

	bits := func(v ...float64) []uint64 {
		out := make([]uint64, len(v))
		for i, f := range v {
			out[i] = math.Float64bits(f)
		}
		return out
	}
	a := bits(pos1.X, pos1.Y, pos1.Z, rot1.Real, rot1.Imag, rot1.Jmag, rot1.Kmag)
	b := bits(pos2.X, pos2.Y, pos2.Z, rot2.Real, rot2.Imag, rot2.Jmag, rot2.Kmag)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs: %x vs %x", i, a[i], b[i])
		}
	}
	// Widening is exact.
	if float32(pos1.Z) != p.Position.Z {
		t.Fatalf("position lost precision: %v vs %v", pos1.Z, p.Position.Z)
	}
}

func TestConvertDoesNotNormalize(t *testing.T) {
	q := Quat(xr.Quaternionf{W: 2})
	if q.Real != 2 {
		t.Fatalf("orientation was renormalized: %+v", q)
	}
}
