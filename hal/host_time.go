package hal

import "time"

// hostTime publishes uptime as millisecond ticks, one frame at a time.
//
// With a zero step the uptime follows the wall clock. Otherwise every frame
// advances it by exactly step, so a headless run sees the same uptime on every
// machine.
type hostTime struct {
	ticks  chan uint64
	uptime uint64 // last millisecond published

	step    time.Duration
	now     func() time.Time
	start   time.Time
	elapsed time.Duration
}

func newHostTime(step time.Duration) *hostTime {
	return &hostTime{ticks: make(chan uint64, 1024), step: step, now: time.Now}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ticks }

// frame advances the clock by one host frame.
func (t *hostTime) frame() {
	switch {
	case t.step > 0:
		if t.uptime > 0 {
			t.elapsed += t.step
		}
	case t.start.IsZero():
		t.start = t.now()
	default:
		t.elapsed = t.now().Sub(t.start)
	}
	t.publish()
}

// publish queues every millisecond up to the current uptime. The first frame is
// millisecond 1. Ticks nobody drains are dropped.
func (t *hostTime) publish() {
	target := uint64(t.elapsed/time.Millisecond) + 1
	for t.uptime < target {
		t.uptime++
		select {
		case t.ticks <- t.uptime:
		default:
		}
	}
}
