package hal

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"
)

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	var steps int
	var got HAL
	err := RunHeadless(context.Background(), func(h HAL) (func() error, error) {
		got = h
		return func() error { steps++; return nil }, nil
	}, HeadlessConfig{Hz: 1000, Ticks: 5})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 5 {
		t.Fatalf("steps = %d, want 5", steps)
	}
	c := got.Display().Canvas()
	if c.Width() != DefaultSize.Width || c.Height() != DefaultSize.Height {
		t.Fatalf("canvas %dx%d, want default size", c.Width(), c.Height())
	}
}

func TestRunHeadlessQuitAndErrors(t *testing.T) {
	quit := func(HAL) (func() error, error) {
		return func() error { return ErrQuit }, nil
	}
	if err := RunHeadless(context.Background(), quit, HeadlessConfig{Hz: 1000}); err != nil {
		t.Fatalf("quit: %v", err)
	}

	boom := errors.New("boom")
	fail := func(HAL) (func() error, error) {
		return func() error { return boom }, nil
	}
	if err := RunHeadless(context.Background(), fail, HeadlessConfig{Hz: 1000}); !errors.Is(err, boom) {
		t.Fatalf("step error = %v, want boom", err)
	}

	initFail := func(HAL) (func() error, error) { return nil, boom }
	if err := RunHeadless(context.Background(), initFail, HeadlessConfig{}); !errors.Is(err, boom) {
		t.Fatalf("init error = %v, want boom", err)
	}
}

func TestRunHeadlessCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := RunHeadless(ctx, func(HAL) (func() error, error) { return nil, nil }, HeadlessConfig{Hz: 100})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestCanvasPresentSwapsFrames(t *testing.T) {
	c := newHostCanvas(10, 10)
	red := color.RGBA{R: 255, A: 255}

	c.Clear(red)
	c.Line(0, 0, 5, 5, 1, red)
	if cmds, seq := c.snapshot(nil); len(cmds) != 0 || seq != 0 {
		t.Fatalf("unpresented frame visible: %d cmds, seq %d", len(cmds), seq)
	}

	c.Present()
	cmds, seq := c.snapshot(nil)
	if seq != 1 || len(cmds) != 2 || cmds[0].Op != OpClear || cmds[1].Op != OpLine {
		t.Fatalf("presented frame = %+v (seq %d)", cmds, seq)
	}

	// Clear starts the frame over.
	c.FillCircle(1, 1, 1, red)
	c.Clear(red)
	c.Text(0, 0, "hi")
	c.Present()
	cmds, _ = c.snapshot(cmds)
	if len(cmds) != 2 || cmds[1].Text != "hi" {
		t.Fatalf("second frame = %+v", cmds)
	}
}

func lastTick(ht *hostTime) uint64 {
	var last uint64
	for n := len(ht.Ticks()); n > 0; n-- {
		last = <-ht.Ticks()
	}
	return last
}

func TestHostTimeFollowsWallClock(t *testing.T) {
	now := time.Unix(0, 0)
	ht := newHostTime(0)
	ht.now = func() time.Time { return now }

	ht.frame()
	now = now.Add(2500 * time.Microsecond)
	ht.frame()
	now = now.Add(600 * time.Microsecond)
	ht.frame()

	if last := lastTick(ht); last != 4 {
		t.Fatalf("last tick = %d, want 4", last)
	}
}

func TestHostTimeFixedStep(t *testing.T) {
	ht := newHostTime(2 * time.Millisecond)
	ht.now = func() time.Time {
		t.Fatal("fixed step must not read the wall clock")
		return time.Time{}
	}

	ht.frame()
	if last := lastTick(ht); last != 1 {
		t.Fatalf("first frame tick = %d, want 1", last)
	}
	ht.frame()
	ht.frame()
	if last := lastTick(ht); last != 5 {
		t.Fatalf("last tick = %d, want 5", last)
	}
}

func TestHeadlessUptimeIsDeterministic(t *testing.T) {
	var h HAL
	err := RunHeadless(context.Background(), func(got HAL) (func() error, error) {
		h = got
		return nil, nil
	}, HeadlessConfig{Hz: 1000, Ticks: 10})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if last := lastTick(h.(*hostHAL).t); last != 10 {
		t.Fatalf("uptime after 10 frames at 1kHz = %d ms, want 10", last)
	}
}
