package sim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"quarkxr/telemetry"
	"quarkxr/xr"
)

// Config describes the simulated runtime.
type Config struct {
	Name string
	// RefreshHz is the simulated display refresh rate.
	RefreshHz int
	// WarmupFrames are driven before the first frame state is published.
	WarmupFrames uint64
	ActionSet    string
	Profile      string
}

// DefaultConfig returns a 72 Hz Oculus Touch runtime.
func DefaultConfig() Config {
	return Config{
		Name:         "quarkxr-sim",
		RefreshHz:    72,
		WarmupFrames: 3,
		ActionSet:    "gameplay",
		Profile:      xr.OculusTouchProfile,
	}
}

// Runtime is a simulated XR runtime. Its driver publishes frame state on its own
// goroutine, the way a real runtime's frame loop does.
type Runtime struct {
	cfg    Config
	period time.Duration

	inst   xr.Instance
	sess   xr.Session
	input  *xr.InputContext
	frames *xr.FrameStateSource

	log     zerolog.Logger
	metrics *telemetry.Metrics

	mu      sync.Mutex
	frame   uint64
	running atomic.Bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runtime) { r.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// New creates the instance, session and input context of a simulated runtime.
func New(cfg Config, opts ...Option) (*Runtime, error) {
	if cfg.RefreshHz <= 0 {
		return nil, fmt.Errorf("sim: invalid refresh rate %d", cfg.RefreshHz)
	}
	inst := xr.NewInstance(cfg.Name)
	sess, err := xr.NewSession(inst)
	if err != nil {
		return nil, err
	}
	in, err := xr.NewInputContext(sess, cfg.ActionSet, cfg.Profile)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		cfg:    cfg,
		period: time.Second / time.Duration(cfg.RefreshHz),
		inst:   inst,
		sess:   sess,
		input:  in,
		frames: xr.NewFrameStateSource(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runtime) Instance() xr.Instance        { return r.inst }
func (r *Runtime) Session() xr.Session          { return r.sess }
func (r *Runtime) Input() *xr.InputContext      { return r.input }
func (r *Runtime) Frames() *xr.FrameStateSource { return r.frames }
func (r *Runtime) Period() time.Duration        { return r.period }
func (r *Runtime) Running() bool                { return r.running.Load() }

// Begin marks the session running without starting the driver goroutine.
func (r *Runtime) Begin() { r.running.Store(true) }

// End stops the session and invalidates the frame state.
func (r *Runtime) End() {
	r.running.Store(false)
	r.frames.Invalidate()
}

// Step drives one frame: it advances the simulated clock, syncs actions and, after
// warmup, publishes the new frame state.
func (r *Runtime) Step() xr.FrameState {
	r.mu.Lock()
	r.frame++
	frame := r.frame
	r.mu.Unlock()

	fs := xr.FrameState{
		Frame: frame,
		// Predicted for the frame after the one being driven.
		PredictedDisplayTime:   xr.Time(int64(frame+1) * int64(r.period)),
		PredictedDisplayPeriod: r.period,
		ShouldRender:           r.running.Load(),
	}
	r.input.MarkSynced(frame)
	if frame <= r.cfg.WarmupFrames {
		return fs
	}
	r.frames.Publish(fs)
	r.metrics.FramePublished()
	return fs
}

// Run drives frames at the refresh rate until ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	r.Begin()
	defer r.End()
	r.log.Info().
		Str("runtime", r.cfg.Name).
		Stringer("session", r.sess).
		Int("refresh_hz", r.cfg.RefreshHz).
		Msg("session running")

	t := time.NewTicker(r.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("session stopping")
			return ctx.Err()
		case <-t.C:
			r.Step()
		}
	}
}

// CheckHandles validates the handles a pose request was made with.
func (r *Runtime) CheckHandles(inst xr.Instance, sess xr.Session) error {
	if inst != r.inst || sess != r.sess || !sess.BelongsTo(inst) {
		return xr.ErrInvalidHandle
	}
	if !r.running.Load() {
		return xr.ErrSessionNotRunning
	}
	return nil
}

// CheckInput validates the input context of a grip request for frame fs.
func (r *Runtime) CheckInput(in *xr.InputContext, fs xr.FrameState) error {
	if in == nil || in.Session != r.sess {
		return xr.ErrInvalidHandle
	}
	if in.SyncedFrame() < fs.Frame {
		return xr.ErrActionsNotSynced
	}
	return nil
}
