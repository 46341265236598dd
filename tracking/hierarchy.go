package tracking

import (
	"fmt"

	"github.com/rs/zerolog"

	"quarkxr/schedule"
	"quarkxr/scene"
	"quarkxr/telemetry"
)

// FindRoot returns the tracking root of w.
//
// With no root it returns ErrRootNotSpawned. With several it returns the earliest
// spawned one together with an error wrapping ErrMultipleRoots.
func FindRoot(w *scene.World) (scene.Entity, error) {
	roots := w.Query(scene.TrackingRoot)
	switch len(roots) {
	case 0:
		return scene.Entity{}, ErrRootNotSpawned
	case 1:
		return roots[0], nil
	default:
		return roots[0], fmt.Errorf("%w: found %d, using %s", ErrMultipleRoots, len(roots), roots[0])
	}
}

// AdoptReport describes one Adopt call.
type AdoptReport struct {
	Root    scene.Entity
	Adopted []scene.Entity
	Pending int
	// Err is ErrRootNotSpawned or wraps ErrMultipleRoots; neither stops the pass.
	Err error
}

// Adopter parents newly spawned Trackable entities under the tracking root.
//
// Trackers spawned while no root exists stay pending and are adopted by the first
// call that finds one. When the root is replaced, trackers left without a parent
// are adopted by the new root.
type Adopter struct {
	log     zerolog.Logger
	metrics *telemetry.Metrics

	cursor  uint64
	pending []scene.Entity
	root    scene.Entity // root of the last successful pass
	waiting bool
}

// AdopterOption configures an Adopter.
type AdopterOption func(*Adopter)

// WithAdopterLogger sets the diagnostics logger.
func WithAdopterLogger(log zerolog.Logger) AdopterOption {
	return func(a *Adopter) { a.log = log }
}

// WithAdopterMetrics sets the metrics sink.
func WithAdopterMetrics(m *telemetry.Metrics) AdopterOption {
	return func(a *Adopter) { a.metrics = m }
}

// NewAdopter returns an Adopter that has seen no creation events yet.
func NewAdopter(opts ...AdopterOption) *Adopter {
	a := &Adopter{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Pending returns the number of trackers waiting for a root.
func (a *Adopter) Pending() int { return len(a.pending) }

// Adopt drains creation events and parents pending trackers under the root.
// It only mutates parent/child edges.
func (a *Adopter) Adopt(w *scene.World) AdoptReport {
	spawned, cursor := w.SpawnedSince(a.cursor, scene.Trackable)
	a.cursor = cursor
	a.pending = append(a.pending, spawned...)

	root, err := FindRoot(w)
	if !root.IsZero() && !a.root.IsZero() && root != a.root {
		a.reclaim(w, root)
	}
	if len(a.pending) == 0 {
		if !root.IsZero() {
			a.root = root
		}
		return AdoptReport{}
	}

	if root.IsZero() {
		if !a.waiting {
			a.log.Info().Int("pending", len(a.pending)).Msg("tracking root not spawned yet")
			a.waiting = true
		} else {
			a.log.Debug().Int("pending", len(a.pending)).Msg("tracking root not spawned yet")
		}
		a.metrics.HierarchyDiagnostic("root_missing")
		return AdoptReport{Pending: len(a.pending), Err: err}
	}
	a.waiting = false
	a.root = root
	if err != nil {
		a.log.Warn().Err(err).Msg("tracking root lookup")
		a.metrics.HierarchyDiagnostic("multiple_roots")
	}

	rep := AdoptReport{Root: root, Err: err}
	for _, tr := range a.pending {
		if tr == root || !w.Alive(tr) {
			continue
		}
		if p, ok := w.Parent(tr); ok && p == root {
			continue
		}
		if aerr := w.AddChild(root, tr); aerr != nil {
			a.log.Warn().Err(aerr).Stringer("tracker", tr).Msg("cannot adopt tracker")
			continue
		}
		a.log.Info().Stringer("tracker", tr).Str("name", w.Name(tr)).Msg("adopted tracker")
		rep.Adopted = append(rep.Adopted, tr)
	}
	a.pending = a.pending[:0]
	a.metrics.TrackersAdopted(len(rep.Adopted))
	return rep
}

// reclaim queues the trackers orphaned by a previous root, along with any still
// parented to it.
func (a *Adopter) reclaim(w *scene.World, root scene.Entity) {
	n := 0
	for _, tr := range w.Query(scene.Trackable) {
		p, ok := w.Parent(tr)
		if ok && p != a.root {
			continue
		}
		a.pending = append(a.pending, tr)
		n++
	}
	a.log.Info().
		Stringer("previous", a.root).
		Stringer("root", root).
		Int("trackers", n).
		Msg("tracking root replaced")
	a.metrics.HierarchyDiagnostic("root_replaced")
}

// Step implements schedule.System.
func (a *Adopter) Step(c *schedule.Context) {
	a.Adopt(c.World())
}
