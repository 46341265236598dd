package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"quarkxr/config"
	"quarkxr/hal"
	"quarkxr/internal/buildinfo"
	"quarkxr/schedule"
	"quarkxr/scene"
	"quarkxr/telemetry"
	"quarkxr/tracking"
	"quarkxr/xr"
	"quarkxr/xr/sim"
)

// Deps are the ambient services an App reports to.
type Deps struct {
	Log     zerolog.Logger
	Metrics *telemetry.Metrics
	Tracer  trace.Tracer
}

// App is the tracking demo: a scene with a tracking root, device proxies and a cube
// grid, driven by a simulated XR runtime.
type App struct {
	cfg config.Config
	log zerolog.Logger
	m   *telemetry.Metrics

	hal   hal.HAL
	world *scene.World
	sched *schedule.Schedule

	rt      *sim.Runtime
	source  xr.PoseSource
	adopter *tracking.Adopter
	sync    *tracking.Synchronizer

	grid   *Grid
	view   *overview
	keys   []keyAction
	uptime uint64
	cubes  int
	quit   bool

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds the scene, the simulated runtime and the schedule. Background work
// started here stops when ctx is done or Close is called.
func New(ctx context.Context, h hal.HAL, cfg config.Config, deps Deps) (*App, error) {
	roles, err := cfg.Roles()
	if err != nil {
		return nil, err
	}
	log := deps.Log

	rt, err := sim.New(sim.Config{
		Name:         cfg.Runtime.Name,
		RefreshHz:    cfg.Runtime.RefreshHz,
		WarmupFrames: cfg.Runtime.WarmupFrames,
		ActionSet:    "gameplay",
		Profile:      xr.OculusTouchProfile,
	}, sim.WithLogger(telemetry.Component(log, "xr")), sim.WithMetrics(deps.Metrics))
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)
	a := &App{
		cfg:    cfg,
		log:    telemetry.Component(log, "app"),
		m:      deps.Metrics,
		hal:    h,
		world:  scene.NewWorld(),
		rt:     rt,
		grid:   newGrid(cfg.Scene.GridWidth, cfg.Scene.GridHeight, cfg.Scene.CubeSize),
		view:   newOverview(),
		ctx:    gctx,
		cancel: cancel,
		group:  group,
	}

	a.source, err = a.newSource(gctx, telemetry.Component(log, "replay"))
	if err != nil {
		cancel()
		return nil, err
	}

	a.adopter = tracking.NewAdopter(
		tracking.WithAdopterLogger(telemetry.Component(log, "hierarchy")),
		tracking.WithAdopterMetrics(deps.Metrics),
	)
	syncOpts := []tracking.SyncOption{
		tracking.WithRoles(roles...),
		tracking.WithSyncLogger(telemetry.Component(log, "sync")),
		tracking.WithSyncMetrics(deps.Metrics),
	}
	if deps.Tracer != nil {
		syncOpts = append(syncOpts, tracking.WithTracer(deps.Tracer))
	}
	a.sync = tracking.NewSynchronizer(tracking.Handles{
		Instance: rt.Instance(),
		Session:  rt.Session(),
		Input:    rt.Input(),
	}, rt.Frames(), a.source, syncOpts...)

	if err := a.install(); err != nil {
		cancel()
		return nil, err
	}

	spawnRoot(a.world)
	spawnTrackers(a.world, roles, cfg.Scene.Controllers)
	spawnProps(a.world)

	if cfg.Runtime.Lockstep {
		rt.Begin()
	} else {
		group.Go(func() error {
			if err := rt.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	a.log.Info().
		Str("version", buildinfo.Short()).
		Stringer("session", rt.Session()).
		Strs("roles", roleNames(a.sync.Roles())).
		Bool("lockstep", cfg.Runtime.Lockstep).
		Msg("app started")
	return a, nil
}

func (a *App) newSource(ctx context.Context, log zerolog.Logger) (xr.PoseSource, error) {
	rc := a.cfg.Runtime
	if rc.Script == "" {
		return sim.NewMotion(a.rt, sim.MotionConfig{
			Radius:        rc.Motion.Radius,
			Height:        rc.Motion.Height,
			HeadHeight:    rc.Motion.HeadHeight,
			Period:        rc.Motion.Period,
			DropEvery:     rc.Motion.DropEvery,
			EyeSeparation: rc.Motion.EyeSeparation,
		}), nil
	}

	s, err := sim.LoadScript(rc.Script)
	if err != nil {
		return nil, fmt.Errorf("load pose script: %w", err)
	}
	r := sim.NewReplay(a.rt, s, log)
	if rc.Watch {
		a.group.Go(func() error { return r.Watch(ctx, rc.Script) })
	}
	return r, nil
}

func (a *App) install() error {
	a.sched = schedule.New(a.world, telemetry.Component(a.log, "schedule"))

	add := func(stage schedule.Stage, name string, fn func(*schedule.Context)) error {
		return a.sched.Add(stage, name, schedule.SystemFunc(fn))
	}
	if a.cfg.Runtime.Lockstep {
		if err := add(schedule.First, "xr.runtime", func(*schedule.Context) { a.rt.Step() }); err != nil {
			return err
		}
	}
	if err := add(schedule.First, "app.input", a.input); err != nil {
		return err
	}
	if err := (tracking.Plugin{Adopter: a.adopter, Synchronizer: a.sync}).Install(a.sched); err != nil {
		return err
	}
	if err := add(schedule.Update, "app.grid", a.updateGrid); err != nil {
		return err
	}
	return add(schedule.Render, "app.render", a.render)
}

func (a *App) input(*schedule.Context) {
	a.keys = drainKeys(a.hal.Input().Keyboard(), a.keys[:0])
	a.uptime = drainTicks(a.hal.Time(), a.uptime)
	for _, k := range a.keys {
		switch k {
		case keyToggleHUD:
			a.view.hud = !a.view.hud
		case keyToggleOrbit:
			a.view.spin = !a.view.spin
		case keyQuit:
			a.quit = true
		}
	}
}

func (a *App) updateGrid(c *schedule.Context) {
	for _, k := range a.keys {
		before := a.grid.Count()
		a.grid.Key(k)
		if n := a.grid.Count(); n != before {
			a.log.Info().Int("width", a.grid.Width).Int("height", a.grid.Height).Int("boxes", n).Msg("grid resized")
		}
	}
	if n, ok := a.grid.Spawn(c.World()); ok {
		a.cubes = n
		a.log.Info().Int("boxes", n).Msg("grid spawned")
	}
}

func (a *App) render(c *schedule.Context) {
	a.view.update()
	canvas := a.hal.Display().Canvas()
	if canvas == nil {
		return
	}
	a.view.draw(canvas, c.World(), hudInfo{
		version: buildinfo.Short(),
		uptime:  a.uptime,
		cubes:   a.cubes,
		grid:    a.grid,
		sync:    a.sync.LastReport(),
	})
}

// Step runs one tick. It returns hal.ErrQuit once quit was requested, and the first
// background error if a runtime goroutine failed.
func (a *App) Step() error {
	select {
	case <-a.ctx.Done():
		if err := a.Close(); err != nil {
			return err
		}
		return hal.ErrQuit
	default:
	}
	a.sched.Tick(a.ctx)
	a.m.Tick()
	if a.quit {
		return hal.ErrQuit
	}
	return nil
}

// Close stops background work and waits for it.
func (a *App) Close() error {
	a.cancel()
	a.rt.End()
	return a.group.Wait()
}

func (a *App) World() *scene.World                  { return a.world }
func (a *App) Runtime() *sim.Runtime                { return a.rt }
func (a *App) Synchronizer() *tracking.Synchronizer { return a.sync }
func (a *App) Grid() *Grid                          { return a.grid }

// Factory adapts New to the hal runners. The created App is passed to onCreate, which
// may be nil.
func Factory(ctx context.Context, cfg config.Config, deps Deps, onCreate func(*App)) func(hal.HAL) (func() error, error) {
	return func(h hal.HAL) (func() error, error) {
		a, err := New(ctx, h, cfg, deps)
		if err != nil {
			return nil, err
		}
		if onCreate != nil {
			onCreate(a)
		}
		return a.Step, nil
	}
}

func roleNames(roles []scene.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}
