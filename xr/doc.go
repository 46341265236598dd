// Package xr models the boundary of the XR runtime the tracking core consumes.
//
// It defines the runtime-native pose types (float32, right-handed, +Y up, meters),
// the opaque instance/session handles, the input-action context, the lock-guarded
// frame state snapshot and the pose source interfaces. Concrete runtimes live
// elsewhere; see package sim for the simulated one.
package xr
