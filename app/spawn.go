package app

import (
	"gonum.org/v1/gonum/spatial/r3"

	"quarkxr/scene"
)

// Cube marks the entities spawned by the grid.
var Cube = scene.UserCapability(0)

// Prop marks static scene furniture drawn by the overview.
var Prop = scene.UserCapability(1)

const (
	gridStep = 1
	gridMax  = 64
)

func spawnRoot(w *scene.World) scene.Entity {
	return w.Spawn(scene.Bundle{
		Name:      "tracking_root",
		Caps:      scene.TrackingRoot | scene.Visible,
		Transform: scene.Identity(),
	})
}

// spawnTrackers spawns one tracked entity per role. Controller roles are skipped
// unless controllers is set, leaving them for the user to spawn.
func spawnTrackers(w *scene.World, roles []scene.Role, controllers bool) []scene.Entity {
	var out []scene.Entity
	for _, r := range roles {
		caps := scene.Trackable | scene.Visible
		switch r {
		case scene.RoleLeftController, scene.RoleRightController:
			if !controllers {
				continue
			}
			caps |= scene.Controller
		}
		out = append(out, w.Spawn(scene.Bundle{Name: r.String(), Caps: caps, Role: r}))
	}
	return out
}

func spawnProps(w *scene.World) {
	w.Spawn(scene.Bundle{Name: "plane", Caps: Prop | scene.Visible, Transform: scene.Identity().WithScale(5)})
	w.Spawn(scene.Bundle{Name: "cube", Caps: Prop | scene.Visible, Transform: scene.FromXYZ(0, 0.5, 0).WithScale(0.1)})
	w.Spawn(scene.Bundle{Name: "cube", Caps: Prop | scene.Visible, Transform: scene.FromXYZ(0, 0.5, 1).WithScale(0.1)})
}

// Grid spawns a wall of cubes in front of the user. Its size is changed from the
// keyboard; R respawns it.
type Grid struct {
	Width    int
	Height   int
	CubeSize float64

	respawn bool
}

func newGrid(width, height int, size float64) *Grid {
	return &Grid{Width: width, Height: height, CubeSize: size, respawn: true}
}

// Count is the number of cubes the next spawn makes.
func (g *Grid) Count() int { return g.Width * g.Height }

// Key applies a released key.
func (g *Grid) Key(k keyAction) {
	switch k {
	case keyGridTaller:
		g.Height = min(g.Height+gridStep, gridMax)
	case keyGridShorter:
		g.Height = max(g.Height-gridStep, 0)
	case keyGridWider:
		g.Width = min(g.Width+gridStep, gridMax)
	case keyGridNarrower:
		g.Width = max(g.Width-gridStep, 0)
	case keyGridRespawn:
		g.respawn = true
	}
}

// Spawn despawns the previous cubes and spawns a new grid when a respawn is due.
// It reports how many cubes were spawned.
func (g *Grid) Spawn(w *scene.World) (int, bool) {
	if !g.respawn {
		return 0, false
	}
	g.respawn = false
	for _, e := range w.Query(Cube) {
		w.Despawn(e)
	}

	size := g.CubeSize
	margin := size * 0.1
	offset := r3.Vec{X: -float64(g.Width) * 0.5 * size, Z: -3}
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			w.Spawn(scene.Bundle{
				Name: "grid_cube",
				Caps: Cube | scene.Visible,
				Transform: scene.FromXYZ(
					float64(x)*(size+margin)+offset.X,
					float64(y)*(size+margin)+offset.Y,
					offset.Z,
				).WithScale(size),
			})
		}
	}
	return g.Count(), true
}
