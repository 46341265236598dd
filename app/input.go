package app

import "quarkxr/hal"

type keyAction uint8

const (
	keyNone keyAction = iota
	keyGridTaller
	keyGridShorter
	keyGridWider
	keyGridNarrower
	keyGridRespawn
	keyToggleHUD
	keyToggleOrbit
	keyQuit
)

// keyBindings act on key release.
var keyBindings = map[hal.KeyCode]keyAction{
	hal.KeyUp:     keyGridTaller,
	hal.KeyDown:   keyGridShorter,
	hal.KeyRight:  keyGridWider,
	hal.KeyLeft:   keyGridNarrower,
	hal.KeyR:      keyGridRespawn,
	hal.KeyF1:     keyToggleHUD,
	hal.KeySpace:  keyToggleOrbit,
	hal.KeyEscape: keyQuit,
}

// drainKeys appends the actions of every released key queued on k.
func drainKeys(k hal.Keyboard, dst []keyAction) []keyAction {
	if k == nil {
		return dst
	}
	for {
		select {
		case ev := <-k.Events():
			if ev.Press {
				continue
			}
			if a, ok := keyBindings[ev.Code]; ok {
				dst = append(dst, a)
			}
		default:
			return dst
		}
	}
}

// drainTicks returns the latest millisecond tick queued on t, or last if none.
func drainTicks(t hal.Time, last uint64) uint64 {
	if t == nil {
		return last
	}
	for {
		select {
		case seq := <-t.Ticks():
			last = seq
		default:
			return last
		}
	}
}
