package tracking

import (
	"errors"
	"fmt"

	"quarkxr/scene"
)

var (
	// ErrRootNotSpawned is reported while no tracking root exists. It clears itself
	// once the application spawns one.
	ErrRootNotSpawned = errors.New("tracking: root not spawned yet")
	// ErrMultipleRoots is reported when more than one tracking root exists.
	ErrMultipleRoots = errors.New("tracking: multiple tracking roots")
	// ErrFrameNotReady is reported when the runtime has no frame state.
	ErrFrameNotReady = errors.New("tracking: frame state not ready")
	// ErrPoseUnavailable wraps pose source failures.
	ErrPoseUnavailable = errors.New("tracking: pose unavailable")
)

// ArityError reports a role that does not map to exactly one entity.
type ArityError struct {
	Role  scene.Role
	Count int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("tracking: expected exactly one %s entity, found %d", e.Role, e.Count)
}

// skipReason maps a role error to a short metrics label.
func skipReason(err error) string {
	var ae *ArityError
	switch {
	case errors.As(err, &ae):
		return "arity"
	case errors.Is(err, ErrPoseUnavailable):
		return "pose_unavailable"
	case errors.Is(err, ErrFrameNotReady):
		return "frame_not_ready"
	default:
		return "other"
	}
}
