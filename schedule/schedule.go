package schedule

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"quarkxr/scene"
)

const maxSystems = 32

// Stage orders systems within a tick.
type Stage uint8

const (
	// First runs before anything reads the world, e.g. input polling.
	First Stage = iota
	// PreUpdate reacts to entities created during the previous tick.
	PreUpdate
	// Update runs application logic.
	Update
	// PostUpdate writes tracked poses and propagates transforms.
	PostUpdate
	// Render consumes global transforms.
	Render

	stageCount
)

func (s Stage) String() string {
	switch s {
	case First:
		return "first"
	case PreUpdate:
		return "pre_update"
	case Update:
		return "update"
	case PostUpdate:
		return "post_update"
	case Render:
		return "render"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// System is a cooperative unit of work run once per tick.
type System interface {
	Step(*Context)
}

// SystemFunc adapts a function to System.
type SystemFunc func(*Context)

func (f SystemFunc) Step(c *Context) { f(c) }

// PanicInfo describes a recovered system panic.
type PanicInfo struct {
	Stage  Stage
	System string
	Value  any
	Stack  []byte
}

type systemState struct {
	name     string
	sys      System
	disabled bool
}

// Schedule runs registered systems stage by stage, once per Tick.
type Schedule struct {
	world *scene.World
	log   zerolog.Logger

	stages [stageCount][]systemState
	count  int
	tick   uint64

	onPanic func(PanicInfo)
}

// New creates a schedule bound to w.
func New(w *scene.World, log zerolog.Logger) *Schedule {
	return &Schedule{world: w, log: log}
}

// OnPanic installs a callback for recovered system panics.
func (s *Schedule) OnPanic(fn func(PanicInfo)) { s.onPanic = fn }

// Add registers sys in stage. Systems in a stage run in registration order.
func (s *Schedule) Add(stage Stage, name string, sys System) error {
	if stage >= stageCount {
		return fmt.Errorf("schedule: invalid stage %d", stage)
	}
	if sys == nil {
		return fmt.Errorf("schedule: nil system %q", name)
	}
	if s.count >= maxSystems {
		return fmt.Errorf("schedule: too many systems (max %d)", maxSystems)
	}
	s.stages[stage] = append(s.stages[stage], systemState{name: name, sys: sys})
	s.count++
	return nil
}

// Tick runs every enabled system once, stage by stage.
func (s *Schedule) Tick(ctx context.Context) {
	s.tick++
	c := &Context{ctx: ctx, world: s.world, tick: s.tick, log: s.log}
	for stage := Stage(0); stage < stageCount; stage++ {
		c.stage = stage
		for i := range s.stages[stage] {
			st := &s.stages[stage][i]
			if st.disabled {
				continue
			}
			s.run(c, st)
		}
	}
}

// Ticks returns the number of completed Tick calls.
func (s *Schedule) Ticks() uint64 { return s.tick }

// World returns the world systems run against.
func (s *Schedule) World() *scene.World { return s.world }

func (s *Schedule) run(c *Context, st *systemState) {
	defer func() {
		if r := recover(); r != nil {
			st.disabled = true
			info := PanicInfo{Stage: c.stage, System: st.name, Value: r, Stack: debug.Stack()}
			s.log.Error().
				Str("stage", c.stage.String()).
				Str("system", st.name).
				Interface("panic", r).
				Bytes("stack", info.Stack).
				Msg("system panicked and was disabled")
			if s.onPanic != nil {
				s.onPanic(info)
			}
		}
	}()
	c.system = st.name
	st.sys.Step(c)
}
