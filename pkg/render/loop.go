package render

import "time"

// FrameInterval is the target spacing between frames.
const FrameInterval = time.Second / 30

// Loop is the animation task state. It is owned by a single goroutine.
//
// The animating flag is set on the first successful data load and stays set
// while the panel is active. Clearing it is the only way to stop the loop:
// the next [Loop.Tick] sees the flag and declines to draw or reschedule.
type Loop struct {
	animating bool
	started   time.Time
	frames    uint64
	now       func() time.Time
}

// NewLoop returns a stopped loop reading time from now (time.Now if nil).
func NewLoop(now func() time.Time) *Loop {
	if now == nil {
		now = time.Now
	}
	return &Loop{now: now}
}

// Start sets the animating flag. The clock origin is fixed on the first start.
func (l *Loop) Start() {
	if l.started.IsZero() {
		l.started = l.now()
	}
	l.animating = true
}

// Stop clears the animating flag.
func (l *Loop) Stop() { l.animating = false }

// Animating reports whether frames are being produced.
func (l *Loop) Animating() bool { return l.animating }

// Frames returns how many frames have been drawn.
func (l *Loop) Frames() uint64 { return l.frames }

// Elapsed returns the animation clock.
func (l *Loop) Elapsed() time.Duration {
	if l.started.IsZero() {
		return 0
	}
	return l.now().Sub(l.started)
}

// Tick runs one frame. It returns false without drawing when the loop is not
// animating; otherwise it calls draw with the elapsed clock and returns true,
// meaning the next frame should be scheduled.
func (l *Loop) Tick(draw func(elapsed time.Duration)) bool {
	if !l.animating {
		return false
	}
	l.frames++
	draw(l.Elapsed())
	return true
}
