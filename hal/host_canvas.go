package hal

import (
	"image/color"
	"sync"
)

// Op identifies a draw command.
type Op uint8

const (
	OpClear Op = iota + 1
	OpLine
	OpFillRect
	OpFillCircle
	OpText
)

// DrawCmd is one recorded draw call. Unused fields are zero.
type DrawCmd struct {
	Op             Op
	X0, Y0, X1, Y1 float32
	// Size is the stroke width for lines and the radius for circles.
	Size  float32
	Color color.RGBA
	Text  string
}

// hostCanvas is double buffered: the app records into back, the window draws front.
type hostCanvas struct {
	width  int
	height int

	back []DrawCmd

	mu    sync.Mutex
	front []DrawCmd
	seq   uint64
}

func newHostCanvas(width, height int) *hostCanvas {
	return &hostCanvas{width: width, height: height}
}

func (c *hostCanvas) Width() int  { return c.width }
func (c *hostCanvas) Height() int { return c.height }

func (c *hostCanvas) Clear(clr color.RGBA) {
	c.back = append(c.back[:0], DrawCmd{Op: OpClear, Color: clr})
}

func (c *hostCanvas) Line(x0, y0, x1, y1, width float32, clr color.RGBA) {
	c.back = append(c.back, DrawCmd{Op: OpLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Size: width, Color: clr})
}

func (c *hostCanvas) FillRect(x, y, w, h float32, clr color.RGBA) {
	c.back = append(c.back, DrawCmd{Op: OpFillRect, X0: x, Y0: y, X1: x + w, Y1: y + h, Color: clr})
}

func (c *hostCanvas) FillCircle(cx, cy, r float32, clr color.RGBA) {
	c.back = append(c.back, DrawCmd{Op: OpFillCircle, X0: cx, Y0: cy, Size: r, Color: clr})
}

func (c *hostCanvas) Text(x, y int, s string) {
	c.back = append(c.back, DrawCmd{Op: OpText, X0: float32(x), Y0: float32(y), Text: s})
}

func (c *hostCanvas) Present() {
	c.mu.Lock()
	c.front, c.back = c.back, c.front[:0]
	c.seq++
	c.mu.Unlock()
}

// snapshot copies the last presented frame into dst.
func (c *hostCanvas) snapshot(dst []DrawCmd) ([]DrawCmd, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(dst[:0], c.front...), c.seq
}
