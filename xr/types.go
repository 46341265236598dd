package xr

import (
	"fmt"
	"time"
)

// Vector3f is a runtime-native position in meters.
type Vector3f struct {
	X, Y, Z float32
}

// Quaternionf is a runtime-native orientation, expected to be unit length.
type Quaternionf struct {
	X, Y, Z, W float32
}

// QuaternionIdentity is the identity orientation.
var QuaternionIdentity = Quaternionf{W: 1}

// Posef is a position plus orientation sampled from the runtime.
type Posef struct {
	Orientation Quaternionf
	Position    Vector3f
}

// PoseIdentity is the pose at the space origin.
var PoseIdentity = Posef{Orientation: QuaternionIdentity}

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Duration returns t as a time.Duration since the runtime epoch.
func (t Time) Duration() time.Duration { return time.Duration(t) }

// Add returns t advanced by d.
func (t Time) Add(d time.Duration) Time { return t + Time(d) }

// Hand selects a hand controller.
type Hand uint8

const (
	HandLeft Hand = iota
	HandRight
)

// Hands lists both hands.
var Hands = [...]Hand{HandLeft, HandRight}

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	default:
		return fmt.Sprintf("hand(%d)", uint8(h))
	}
}

// View selects a head-relative pose.
type View uint8

const (
	ViewHead View = iota
	ViewLeftEye
	ViewRightEye
)

func (v View) String() string {
	switch v {
	case ViewHead:
		return "head"
	case ViewLeftEye:
		return "left_eye"
	case ViewRightEye:
		return "right_eye"
	default:
		return fmt.Sprintf("view(%d)", uint8(v))
	}
}
