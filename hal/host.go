package hal

import "time"

// Size is the logical canvas size of the host runners.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when a runner is given a zero size.
var DefaultSize = Size{Width: 320, Height: 240}

type hostHAL struct {
	canvas *hostCanvas
	kbd    *hostKeyboard
	t      *hostTime
}

// newHost builds the host HAL. A non-zero step fixes the uptime advance per frame.
func newHost(size Size, step time.Duration) *hostHAL {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	return &hostHAL{
		canvas: newHostCanvas(size.Width, size.Height),
		kbd:    newHostKeyboard(),
		t:      newHostTime(step),
	}
}

func (h *hostHAL) Display() Display { return hostDisplay{c: h.canvas} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	c *hostCanvas
}

func (d hostDisplay) Canvas() Canvas { return d.c }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
