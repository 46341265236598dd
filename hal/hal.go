package hal

import (
	"errors"
	"image/color"
)

// ErrQuit is returned by an app step to stop the runner cleanly.
var ErrQuit = errors.New("quit")

// Canvas records 2D draw commands for the current frame.
//
// Coordinates are logical pixels; the window runner scales them to the screen.
// Present publishes the recorded frame and starts a new one.
type Canvas interface {
	Width() int
	Height() int
	Clear(c color.RGBA)
	Line(x0, y0, x1, y1, width float32, c color.RGBA)
	FillRect(x, y, w, h float32, c color.RGBA)
	FillCircle(cx, cy, r float32, c color.RGBA)
	Text(x, y int, s string)
	Present()
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeySpace
	KeyTab
	KeyR
	KeyF1
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the canvas.
type Display interface {
	Canvas() Canvas
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Time provides a base tick stream.
//
// Ticks are milliseconds of wall time, delivered as a sequence number.
type Time interface {
	Ticks() <-chan uint64
}

// HAL is the only contact point between the app and the host.
type HAL interface {
	Display() Display
	Input() Input
	Time() Time
}
