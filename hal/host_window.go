//go:build cgo

package hal

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Title string
	Size  Size
	// Scale multiplies the logical size for the initial window size.
	Scale int
	TPS   int
}

// RunWindow starts a desktop window that draws the canvas and forwards keyboard input.
// It blocks until the window closes or a step returns ErrQuit.
func RunWindow(newApp func(HAL) (func() error, error), cfg WindowConfig) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	h := newHost(cfg.Size, 0)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(h.canvas.width*cfg.Scale, h.canvas.height*cfg.Scale)
	ebiten.SetTPS(cfg.TPS)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h    *hostHAL
	cmds []DrawCmd
	step func() error
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.t.frame()
	if g.step != nil {
		if err := g.step(); err != nil {
			if errors.Is(err, ErrQuit) {
				return ebiten.Termination
			}
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	g.cmds, _ = g.h.canvas.snapshot(g.cmds)
	for _, c := range g.cmds {
		switch c.Op {
		case OpClear:
			screen.Fill(c.Color)
		case OpLine:
			vector.StrokeLine(screen, c.X0, c.Y0, c.X1, c.Y1, c.Size, c.Color, true)
		case OpFillRect:
			vector.DrawFilledRect(screen, c.X0, c.Y0, c.X1-c.X0, c.Y1-c.Y0, c.Color, false)
		case OpFillCircle:
			vector.DrawFilledCircle(screen, c.X0, c.Y0, c.Size, c.Color, true)
		case OpText:
			ebitenutil.DebugPrintAt(screen, c.Text, int(c.X0), int(c.Y0))
		}
	}
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.canvas.width, g.h.canvas.height
}
