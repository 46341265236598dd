package app

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"

	"quarkxr/hal"
	"quarkxr/scene"
	"quarkxr/tracking"
)

var (
	colorBackground = color.RGBA{R: 0x12, G: 0x14, B: 0x1c, A: 0xff}
	colorPlane      = color.RGBA{R: 0x4c, G: 0x80, B: 0x4c, A: 0xff}
	colorProp       = color.RGBA{R: 0xcc, G: 0xb3, B: 0x99, A: 0xff}
	colorCube       = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	colorLeft       = color.RGBA{R: 0x40, G: 0x90, B: 0xff, A: 0xff}
	colorRight      = color.RGBA{R: 0xff, G: 0x50, B: 0x50, A: 0xff}
	colorHead       = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	colorStale      = color.RGBA{R: 0x70, G: 0x70, B: 0x70, A: 0xff}
)

// overview draws a third-person view of the scene with debug gizmos for trackers.
type overview struct {
	cam   Camera
	orbit OrbitController
	spin  bool
	hud   bool
}

func newOverview() *overview {
	v := &overview{
		cam: defaultCamera(),
		orbit: OrbitController{
			Target:    r3.Vec{Y: 0.8, Z: -1},
			Yaw:       -0.4,
			Pitch:     -0.45,
			Radius:    5.5,
			MinRadius: 1,
			MaxRadius: 20,
		},
		hud: true,
	}
	v.orbit.Apply(&v.cam)
	return v
}

func (v *overview) update() {
	if v.spin {
		v.orbit.Rotate(0.01, 0)
	}
	v.orbit.Apply(&v.cam)
}

type hudInfo struct {
	version string
	uptime  uint64
	cubes   int
	grid    *Grid
	sync    tracking.SyncReport
}

func (v *overview) draw(c hal.Canvas, w *scene.World, info hudInfo) {
	c.Clear(colorBackground)
	width, height := c.Width(), c.Height()

	v.drawPlane(c, width, height, 2.5)
	for _, e := range w.Query(Prop | scene.Visible) {
		if w.Name(e) == "plane" {
			continue
		}
		v.drawBox(c, w, e, colorProp, width, height)
	}
	for _, e := range w.Query(Cube | scene.Visible) {
		v.drawBox(c, w, e, colorCube, width, height)
	}
	for _, e := range w.Query(scene.TrackingRoot) {
		v.drawAxes(c, w, e, 0.3, width, height)
	}
	for _, e := range w.Query(scene.Trackable | scene.Visible) {
		v.drawTracker(c, w, e, info.sync, width, height)
	}

	if v.hud {
		c.Text(4, 4, fmt.Sprintf("quarkxr %s  t=%.1fs", info.version, float64(info.uptime)/1000))
		c.Text(4, 18, fmt.Sprintf("frame %d  cubes %d (next %dx%d)", info.sync.Frame.Frame, info.cubes, info.grid.Width, info.grid.Height))
		y := 32
		for _, rr := range info.sync.Roles {
			status := "ok"
			if rr.Err != nil {
				status = rr.Err.Error()
			}
			c.Text(4, y, fmt.Sprintf("%-16s %s", rr.Role, status))
			y += 14
		}
		if info.sync.Skipped {
			c.Text(4, y, "waiting for frame state")
		}
	}
	c.Present()
}

func (v *overview) line(c hal.Canvas, a, b r3.Vec, width float32, clr color.RGBA, w, h int) {
	x0, y0, _, ok0 := v.cam.Project(a, w, h)
	x1, y1, _, ok1 := v.cam.Project(b, w, h)
	if ok0 && ok1 {
		c.Line(x0, y0, x1, y1, width, clr)
	}
}

func (v *overview) drawPlane(c hal.Canvas, w, h int, half float64) {
	const lines = 5
	for i := 0; i <= lines; i++ {
		f := -half + 2*half*float64(i)/lines
		v.line(c, r3.Vec{X: f, Z: -half}, r3.Vec{X: f, Z: half}, 1, colorPlane, w, h)
		v.line(c, r3.Vec{X: -half, Z: f}, r3.Vec{X: half, Z: f}, 1, colorPlane, w, h)
	}
}

func (v *overview) drawBox(c hal.Canvas, w *scene.World, e scene.Entity, clr color.RGBA, width, height int) {
	g, ok := w.GlobalTransform(e)
	if !ok {
		return
	}
	x, y, s, ok := v.cam.Project(g.Translation, width, height)
	if !ok {
		return
	}
	side := max(float32(g.Scale.X)*s, 1)
	c.FillRect(x-side/2, y-side/2, side, side, clr)
}

func (v *overview) drawAxes(c hal.Canvas, w *scene.World, e scene.Entity, size float64, width, height int) {
	g, ok := w.GlobalTransform(e)
	if !ok {
		return
	}
	o := g.Translation
	v.line(c, o, r3.Add(o, r3.Scale(size, g.Right())), 1, colorRight, width, height)
	v.line(c, o, r3.Add(o, r3.Scale(size, g.Up())), 1, colorPlane, width, height)
	v.line(c, o, r3.Add(o, r3.Scale(size, g.Forward())), 1, colorLeft, width, height)
}

func (v *overview) drawTracker(c hal.Canvas, w *scene.World, e scene.Entity, rep tracking.SyncReport, width, height int) {
	g, ok := w.GlobalTransform(e)
	if !ok {
		return
	}
	role := w.RoleOf(e)
	clr := colorHead
	switch role {
	case scene.RoleLeftController:
		clr = colorLeft
	case scene.RoleRightController:
		clr = colorRight
	}
	if rr, ok := rep.Result(role); ok && !rr.Updated {
		clr = colorStale
	}

	x, y, s, ok := v.cam.Project(g.Translation, width, height)
	if !ok {
		return
	}
	r := max(0.03*s, 2)
	c.FillCircle(x, y, r, clr)
	v.line(c, g.Translation, r3.Add(g.Translation, r3.Scale(0.15, g.Forward())), 2, clr, width, height)
}
