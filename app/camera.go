package app

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective camera used to draw the scene overview.
type Camera struct {
	Position r3.Vec
	Target   r3.Vec
	Up       r3.Vec

	FOVY float64
	Near float64
}

func defaultCamera() Camera {
	return Camera{
		Position: r3.Vec{X: -2, Y: 2.5, Z: 5},
		Up:       r3.Vec{Y: 1},
		FOVY:     1.0,
		Near:     0.05,
	}
}

// Project maps a world point to canvas pixels. scale is pixels per meter at the
// point's depth. ok is false for points behind the near plane.
func (c Camera) Project(p r3.Vec, w, h int) (x, y, scale float32, ok bool) {
	up := c.Up
	if up == (r3.Vec{}) {
		up = r3.Vec{Y: 1}
	}
	fwd := r3.Unit(r3.Sub(c.Target, c.Position))
	right := r3.Unit(r3.Cross(fwd, up))
	camUp := r3.Cross(right, fwd)

	d := r3.Sub(p, c.Position)
	z := r3.Dot(d, fwd)
	if z <= c.Near {
		return 0, 0, 0, false
	}
	fov := c.FOVY
	if fov == 0 {
		fov = 1.0
	}
	focal := float64(h) / 2 / math.Tan(fov/2)
	s := focal / z
	x = float32(float64(w)/2 + r3.Dot(d, right)*s)
	y = float32(float64(h)/2 - r3.Dot(d, camUp)*s)
	return x, y, float32(s), true
}

// OrbitController orbits a camera around a target.
type OrbitController struct {
	Target r3.Vec
	Yaw    float64
	Pitch  float64
	Radius float64

	MinRadius float64
	MaxRadius float64
}

func (c *OrbitController) Apply(cam *Camera) {
	if cam == nil {
		return
	}
	r := c.Radius
	if r == 0 {
		r = 3
	}
	if c.MinRadius != 0 && r < c.MinRadius {
		r = c.MinRadius
	}
	if c.MaxRadius != 0 && r > c.MaxRadius {
		r = c.MaxRadius
	}

	p := r3.NewRotation(c.Pitch, r3.Vec{X: 1}).Rotate(r3.Vec{Z: r})
	p = r3.NewRotation(c.Yaw, r3.Vec{Y: 1}).Rotate(p)

	cam.Position = r3.Add(c.Target, p)
	cam.Target = c.Target
	if cam.Up == (r3.Vec{}) {
		cam.Up = r3.Vec{Y: 1}
	}
}

func (c *OrbitController) Rotate(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	c.Pitch = math.Max(-1.5, math.Min(1.5, c.Pitch+deltaPitch))
}

func (c *OrbitController) Zoom(delta float64) {
	c.Radius += delta
	if c.MinRadius != 0 && c.Radius < c.MinRadius {
		c.Radius = c.MinRadius
	}
	if c.MaxRadius != 0 && c.Radius > c.MaxRadius {
		c.Radius = c.MaxRadius
	}
}
