package schedule

import (
	"context"

	"github.com/rs/zerolog"

	"quarkxr/scene"
)

// Context provides system-local access to the tick being run.
type Context struct {
	ctx    context.Context
	world  *scene.World
	tick   uint64
	stage  Stage
	system string
	log    zerolog.Logger
}

// NewContext returns a Context for driving a single system outside a Schedule.
func NewContext(ctx context.Context, w *scene.World, tick uint64) *Context {
	return &Context{ctx: ctx, world: w, tick: tick, log: zerolog.Nop()}
}

// Context returns the context.Context of the running tick.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// World returns the scene the system operates on.
func (c *Context) World() *scene.World { return c.world }

// Tick returns the 1-based index of the running tick.
func (c *Context) Tick() uint64 { return c.tick }

// Stage returns the stage being run.
func (c *Context) Stage() Stage { return c.stage }

// Logger returns the schedule logger tagged with the running system.
func (c *Context) Logger() zerolog.Logger {
	return c.log.With().Str("system", c.system).Logger()
}
