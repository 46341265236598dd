package sim

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"quarkxr/xr"
)

// Replay is a PoseSource that plays back a Script against predicted display time.
type Replay struct {
	rt            *Runtime
	eyeSeparation float64
	log           zerolog.Logger

	mu     sync.RWMutex
	script *Script
}

// NewReplay returns a replay source for s bound to rt.
func NewReplay(rt *Runtime, s *Script, log zerolog.Logger) *Replay {
	return &Replay{rt: rt, script: s, eyeSeparation: DefaultMotion().EyeSeparation, log: log}
}

// Script returns the script being played.
func (r *Replay) Script() *Script {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.script
}

// Swap replaces the script being played.
func (r *Replay) Swap(s *Script) {
	r.mu.Lock()
	r.script = s
	r.mu.Unlock()
}

func (r *Replay) sample(device string, fs xr.FrameState) (xr.Posef, error) {
	s := r.Script()
	if s == nil {
		return xr.Posef{}, xr.ErrPoseNotTracked
	}
	p, q, ok := s.Sample(device, fs.PredictedDisplayTime.Duration())
	if !ok {
		return xr.Posef{}, xr.ErrPoseNotTracked
	}
	return nativePose(p, q), nil
}

// GripPose implements xr.PoseSource.
func (r *Replay) GripPose(_ context.Context, inst xr.Instance, sess xr.Session, fs xr.FrameState, in *xr.InputContext, hand xr.Hand) (xr.Posef, error) {
	if err := r.rt.CheckHandles(inst, sess); err != nil {
		return xr.Posef{}, err
	}
	if err := r.rt.CheckInput(in, fs); err != nil {
		return xr.Posef{}, err
	}
	device := DeviceLeft
	if hand == xr.HandRight {
		device = DeviceRight
	}
	return r.sample(device, fs)
}

// ViewPose implements xr.ViewPoseSource.
func (r *Replay) ViewPose(_ context.Context, inst xr.Instance, sess xr.Session, fs xr.FrameState, view xr.View) (xr.Posef, error) {
	if err := r.rt.CheckHandles(inst, sess); err != nil {
		return xr.Posef{}, err
	}
	s := r.Script()
	if s == nil {
		return xr.Posef{}, xr.ErrPoseNotTracked
	}
	p, q, ok := s.Sample(DeviceHead, fs.PredictedDisplayTime.Duration())
	if !ok {
		return xr.Posef{}, xr.ErrPoseNotTracked
	}
	p, q = eyePose(p, q, view, r.eyeSeparation)
	return nativePose(p, q), nil
}

// Watch reloads the script whenever path changes, until ctx is done. A script that
// fails to load is logged and the previous one keeps playing.
func (r *Replay) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory so editors that replace the file are seen.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	clean := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != clean || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			s, err := LoadScript(path)
			if err != nil {
				r.log.Warn().Err(err).Str("path", path).Msg("pose script reload failed")
				continue
			}
			r.Swap(s)
			r.log.Info().Str("path", path).Str("name", s.Name).Int("keyframes", len(s.Keyframes)).Msg("pose script reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn().Err(err).Msg("pose script watcher")
		}
	}
}
