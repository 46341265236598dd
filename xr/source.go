package xr

import "context"

// PoseSource samples device poses from the runtime.
//
// Implementations fail closed: on error the returned pose must be ignored. Calls may
// block on runtime I/O.
type PoseSource interface {
	GripPose(ctx context.Context, inst Instance, sess Session, fs FrameState, in *InputContext, hand Hand) (Posef, error)
}

// ViewPoseSource is implemented by sources that can also locate the head and eyes.
type ViewPoseSource interface {
	ViewPose(ctx context.Context, inst Instance, sess Session, fs FrameState, view View) (Posef, error)
}
