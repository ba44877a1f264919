package panel

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockscape/pkg/autoplay"
	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/render"
)

// Option configures a [Panel].
type Option func(*Panel)

// WithLogger sets the panel logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Panel) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCanvas sets the initial canvas size in pixels.
func WithCanvas(width, height float64) Option {
	return func(p *Panel) {
		if width > 0 && height > 0 {
			p.canvasW, p.canvasH = width, height
		}
	}
}

// WithSink receives every animated frame. It runs on the panel goroutine and
// must not block or call back into the panel.
func WithSink(fn func(View)) Option {
	return func(p *Panel) {
		if fn != nil {
			p.sink = fn
		}
	}
}

// WithStatus receives the status after every state change. The same
// restrictions as [WithSink] apply.
func WithStatus(fn func(Status)) Option {
	return func(p *Panel) {
		if fn != nil {
			p.onStatus = fn
		}
	}
}

// WithPhaseSource sets the random source for edge blink phases.
func WithPhaseSource(src blocks.PhaseSource) Option {
	return func(p *Panel) {
		if src != nil {
			p.src = src
		}
	}
}

// WithMeasurer sets how label widths are measured.
func WithMeasurer(m render.Measurer) Option {
	return func(p *Panel) { p.measurer = m }
}

// WithClock sets the animation clock.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) {
		if now != nil {
			p.now = now
		}
	}
}

// WithAutoplayInterval sets the autoplay step interval.
func WithAutoplayInterval(d time.Duration) Option {
	return func(p *Panel) {
		p.autoplayOpts = append(p.autoplayOpts, autoplay.WithInterval(d))
	}
}

// WithAutoplayTicker overrides how autoplay tickers are created.
func WithAutoplayTicker(f autoplay.NewTickerFunc) Option {
	return func(p *Panel) {
		p.autoplayOpts = append(p.autoplayOpts, autoplay.WithTicker(f))
	}
}

// WithFrameTicker overrides how the frame ticker is created.
func WithFrameTicker(f autoplay.NewTickerFunc) Option {
	return func(p *Panel) {
		if f != nil {
			p.newFrameTicker = f
		}
	}
}
