// Package autoplay steps through the loaded blocks on a fixed interval.
//
// A [Sequencer] owns at most one ticker. [Sequencer.Start] always stops the
// previous ticker before creating a new one, so restarting never leaves a
// second timer running. The owner selects on [Sequencer.C] in its event loop
// and calls [Sequencer.Step] for every tick; C is nil while stopped, which
// makes the select case inert.
package autoplay

import "time"

// DefaultInterval is the time between automatic steps.
const DefaultInterval = time.Second

// Ticker is the subset of *time.Ticker the sequencer uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTickerFunc creates tickers. Tests inject a manual one.
type NewTickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// RealTicker wraps time.NewTicker.
func RealTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// Stepper is what a tick advances. *blocks.Index satisfies it.
type Stepper interface {
	Advance() int
}

// Sequencer drives a Stepper from a ticker. It is not safe for concurrent use.
type Sequencer struct {
	interval  time.Duration
	newTicker NewTickerFunc
	ticker    Ticker
	steps     uint64
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithInterval overrides [DefaultInterval].
func WithInterval(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTicker overrides how tickers are created.
func WithTicker(f NewTickerFunc) Option {
	return func(s *Sequencer) {
		if f != nil {
			s.newTicker = f
		}
	}
}

// New returns a stopped sequencer.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{interval: DefaultInterval, newTicker: RealTicker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins ticking, replacing any running ticker.
func (s *Sequencer) Start() {
	s.Stop()
	s.ticker = s.newTicker(s.interval)
}

// Stop cancels the ticker. It is safe to call when already stopped.
func (s *Sequencer) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// Active reports whether a ticker is running.
func (s *Sequencer) Active() bool { return s.ticker != nil }

// Interval returns the step interval.
func (s *Sequencer) Interval() time.Duration { return s.interval }

// Steps returns how many steps have been taken.
func (s *Sequencer) Steps() uint64 { return s.steps }

// C returns the tick channel, or nil while stopped.
func (s *Sequencer) C() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C()
}

// Step advances st and returns its new position.
func (s *Sequencer) Step(st Stepper) int {
	s.steps++
	return st.Advance()
}
