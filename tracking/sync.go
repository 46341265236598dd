package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"quarkxr/schedule"
	"quarkxr/scene"
	"quarkxr/telemetry"
	"quarkxr/xr"
)

// ControllerRoles are synchronized by default.
var ControllerRoles = []scene.Role{scene.RoleLeftController, scene.RoleRightController}

// ViewRoles are synchronized when the pose source implements xr.ViewPoseSource.
var ViewRoles = []scene.Role{scene.RoleHMD, scene.RoleLeftEye, scene.RoleRightEye}

// Handles are the runtime handles a Synchronizer samples with.
type Handles struct {
	Instance xr.Instance
	Session  xr.Session
	Input    *xr.InputContext
}

// RoleResult is the outcome for one role in a pass.
type RoleResult struct {
	Role    scene.Role
	Entity  scene.Entity
	Updated bool
	Err     error
}

// SyncReport describes one Sync call.
type SyncReport struct {
	Frame   xr.FrameState
	Skipped bool
	Err     error
	Roles   []RoleResult
}

// Result returns the outcome for role.
func (r SyncReport) Result(role scene.Role) (RoleResult, bool) {
	for _, rr := range r.Roles {
		if rr.Role == role {
			return rr, true
		}
	}
	return RoleResult{}, false
}

// Synchronizer writes sampled device poses into tracked entities.
type Synchronizer struct {
	handles Handles
	frames  xr.FrameStateProvider
	source  xr.PoseSource
	views   xr.ViewPoseSource
	roles   []scene.Role

	log     zerolog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer

	failing map[scene.Role]bool
	last    SyncReport
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithRoles replaces the set of roles to synchronize.
func WithRoles(roles ...scene.Role) SyncOption {
	return func(s *Synchronizer) { s.roles = append([]scene.Role(nil), roles...) }
}

// WithSyncLogger sets the diagnostics logger.
func WithSyncLogger(log zerolog.Logger) SyncOption {
	return func(s *Synchronizer) { s.log = log }
}

// WithSyncMetrics sets the metrics sink.
func WithSyncMetrics(m *telemetry.Metrics) SyncOption {
	return func(s *Synchronizer) { s.metrics = m }
}

// WithTracer sets the tracer used for per-pass spans.
func WithTracer(t trace.Tracer) SyncOption {
	return func(s *Synchronizer) { s.tracer = t }
}

// NewSynchronizer returns a Synchronizer for the controller roles unless WithRoles
// says otherwise. View roles are dropped when source cannot locate views.
func NewSynchronizer(h Handles, frames xr.FrameStateProvider, source xr.PoseSource, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		handles: h,
		frames:  frames,
		source:  source,
		roles:   ControllerRoles,
		log:     zerolog.Nop(),
		tracer:  noop.NewTracerProvider().Tracer("quarkxr/tracking"),
		failing: make(map[scene.Role]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.views, _ = source.(xr.ViewPoseSource)

	roles := s.roles[:0:0]
	for _, r := range s.roles {
		if isViewRole(r) && s.views == nil {
			s.log.Warn().Stringer("role", r).Msg("pose source cannot locate views; role disabled")
			continue
		}
		if !r.Valid() {
			continue
		}
		roles = append(roles, r)
	}
	s.roles = roles
	return s
}

// Roles returns the roles synchronized each pass.
func (s *Synchronizer) Roles() []scene.Role {
	return append([]scene.Role(nil), s.roles...)
}

// Sync runs one synchronization pass against w.
func (s *Synchronizer) Sync(ctx context.Context, w *scene.World) SyncReport {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "tracking.sync")
	defer span.End()

	fs, ok := s.frames.CurrentFrameState()
	if !ok {
		span.SetAttributes(attribute.Bool("skipped", true))
		s.metrics.SyncPass(true, time.Since(start))
		return SyncReport{Skipped: true, Err: ErrFrameNotReady}
	}
	span.SetAttributes(
		attribute.Int64("frame", int64(fs.Frame)),
		attribute.Int64("predicted_display_time", int64(fs.PredictedDisplayTime)),
	)

	rep := SyncReport{Frame: fs, Roles: make([]RoleResult, 0, len(s.roles))}
	for _, role := range s.roles {
		rr := s.syncRole(ctx, w, fs, role)
		if rr.Err != nil {
			s.noteFailure(role, rr.Err)
			span.AddEvent("role skipped", trace.WithAttributes(
				attribute.String("role", role.String()),
				attribute.String("error", rr.Err.Error()),
			))
		} else {
			s.noteRecovery(role)
		}
		rep.Roles = append(rep.Roles, rr)
	}
	if n := rep.failed(); n > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d roles skipped", n))
	}
	s.metrics.SyncPass(false, time.Since(start))
	return rep
}

func (s *Synchronizer) syncRole(ctx context.Context, w *scene.World, fs xr.FrameState, role scene.Role) RoleResult {
	rr := RoleResult{Role: role}

	ents := w.WithRole(role)
	if len(ents) != 1 {
		rr.Err = &ArityError{Role: role, Count: len(ents)}
		return rr
	}
	rr.Entity = ents[0]

	pose, err := s.sample(ctx, fs, role)
	if err != nil {
		rr.Err = fmt.Errorf("%w: %s: %w", ErrPoseUnavailable, role, err)
		return rr
	}

	translation, rotation := Pose(pose)
	if !w.SetPose(rr.Entity, translation, rotation) {
		rr.Err = &ArityError{Role: role, Count: 0}
		return rr
	}
	rr.Updated = true
	s.metrics.RoleUpdated(role.String())
	return rr
}

func (s *Synchronizer) sample(ctx context.Context, fs xr.FrameState, role scene.Role) (xr.Posef, error) {
	h := s.handles
	switch role {
	case scene.RoleLeftController:
		return s.source.GripPose(ctx, h.Instance, h.Session, fs, h.Input, xr.HandLeft)
	case scene.RoleRightController:
		return s.source.GripPose(ctx, h.Instance, h.Session, fs, h.Input, xr.HandRight)
	case scene.RoleHMD:
		return s.views.ViewPose(ctx, h.Instance, h.Session, fs, xr.ViewHead)
	case scene.RoleLeftEye:
		return s.views.ViewPose(ctx, h.Instance, h.Session, fs, xr.ViewLeftEye)
	case scene.RoleRightEye:
		return s.views.ViewPose(ctx, h.Instance, h.Session, fs, xr.ViewRightEye)
	}
	return xr.Posef{}, fmt.Errorf("no pose for role %s", role)
}

// noteFailure logs the first failure of a streak at warn and the rest at debug.
func (s *Synchronizer) noteFailure(role scene.Role, err error) {
	s.metrics.RoleSkipped(role.String(), skipReason(err))
	ev := s.log.Debug()
	if !s.failing[role] {
		ev = s.log.Warn()
		s.failing[role] = true
	}
	var ae *ArityError
	if errors.As(err, &ae) {
		ev = ev.Int("count", ae.Count)
	}
	ev.Err(err).Stringer("role", role).Msg("role update skipped")
}

func (s *Synchronizer) noteRecovery(role scene.Role) {
	if s.failing[role] {
		s.failing[role] = false
		s.log.Info().Stringer("role", role).Msg("role tracking resumed")
	}
}

// Step implements schedule.System.
func (s *Synchronizer) Step(c *schedule.Context) {
	s.last = s.Sync(c.Context(), c.World())
}

// LastReport returns the report of the last pass run by Step.
func (s *Synchronizer) LastReport() SyncReport { return s.last }

func (r SyncReport) failed() int {
	n := 0
	for _, rr := range r.Roles {
		if rr.Err != nil {
			n++
		}
	}
	return n
}

func isViewRole(r scene.Role) bool {
	return r == scene.RoleHMD || r == scene.RoleLeftEye || r == scene.RoleRightEye
}
