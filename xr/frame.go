package xr

import (
	"sync"
	"time"
)

// FrameState is the runtime's description of the frame being prepared.
type FrameState struct {
	Frame                  uint64
	PredictedDisplayTime   Time
	PredictedDisplayPeriod time.Duration
	ShouldRender           bool
}

// FrameStateProvider yields a copy of the current frame state, or false if the
// runtime has not produced one yet.
type FrameStateProvider interface {
	CurrentFrameState() (FrameState, bool)
}

// FrameStateSource is a lock-guarded FrameState snapshot. The runtime driver
// publishes into it; readers receive copies.
type FrameStateSource struct {
	mu    sync.RWMutex
	state FrameState
	valid bool
}

// NewFrameStateSource returns an empty source.
func NewFrameStateSource() *FrameStateSource {
	return &FrameStateSource{}
}

// Publish replaces the snapshot and marks it valid.
func (s *FrameStateSource) Publish(fs FrameState) {
	s.mu.Lock()
	s.state = fs
	s.valid = true
	s.mu.Unlock()
}

// Invalidate marks the snapshot as not ready.
func (s *FrameStateSource) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

// CurrentFrameState implements FrameStateProvider.
func (s *FrameStateSource) CurrentFrameState() (FrameState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.valid
}
