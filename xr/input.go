package xr

import "sync/atomic"

// OculusTouchProfile is the interaction profile path for Oculus Touch controllers.
const OculusTouchProfile = "/interaction_profiles/oculus/touch_controller"

// InputContext is the active input-action context: the action set bound to a
// session, its interaction profile and the grip spaces created for each hand.
type InputContext struct {
	ActionSet string
	Profile   string
	Session   Session

	grip [len(Hands)]Space

	synced atomic.Uint64 // last frame the action set was synced for
}

// NewInputContext creates the grip action spaces for sess.
func NewInputContext(sess Session, actionSet, profile string) (*InputContext, error) {
	if !sess.Valid() {
		return nil, ErrInvalidHandle
	}
	in := &InputContext{ActionSet: actionSet, Profile: profile, Session: sess}
	for _, h := range Hands {
		in.grip[h] = newSpace()
	}
	return in, nil
}

// GripSpace returns the grip space for h.
func (in *InputContext) GripSpace(h Hand) Space {
	if in == nil || int(h) >= len(in.grip) {
		return Space{}
	}
	return in.grip[h]
}

// MarkSynced records that actions were synced for frame.
func (in *InputContext) MarkSynced(frame uint64) {
	if in != nil {
		in.synced.Store(frame)
	}
}

// SyncedFrame returns the last frame MarkSynced was called with.
func (in *InputContext) SyncedFrame() uint64 {
	if in == nil {
		return 0
	}
	return in.synced.Load()
}
