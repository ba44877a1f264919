// Package panel is the explicit state object behind one visualization view.
//
// A [Panel] owns the block index, viewport, gesture controller, cluster
// graphs, render loop and autoplay sequencer of a single view. All of that
// state is touched only from the goroutine running [Panel.Run]; every public
// method posts work to it. Fetches run on their own goroutines and post their
// result back, so input and hover stay responsive on the previous data while
// a request is outstanding.
//
// # Lifecycle
//
// Run activates the panel. Cancelling its context deactivates it: the
// autoplay and frame tickers are stopped and the animating flag cleared.
// Methods called after that return [ErrClosed].
//
// # Fetch generations
//
// Every fetch takes the next generation number. A response whose generation
// is no longer the latest is discarded, so a slow earlier request can never
// overwrite a newer dataset or clear the processing flag of a newer request.
package panel

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockscape/pkg/autoplay"
	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/cluster"
	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/geom"
	"github.com/matzehuels/blockscape/pkg/gesture"
	"github.com/matzehuels/blockscape/pkg/observability"
	"github.com/matzehuels/blockscape/pkg/provider"
	"github.com/matzehuels/blockscape/pkg/render"
	"github.com/matzehuels/blockscape/pkg/viewport"
)

// ErrClosed is returned by methods of a panel that is not running.
var ErrClosed = errors.New(errors.ErrCodeInternal, "panel is not running")

// Status is the user-visible state of a panel.
type Status struct {
	Loaded     bool        `json:"loaded"`
	Processing bool        `json:"processing"`
	Generation uint64      `json:"generation"`
	Start      int         `json:"start"`
	End        int         `json:"end"`
	Blocks     []int       `json:"blocks,omitempty"`
	Position   int         `json:"position"`
	Block      int         `json:"block"`
	HasBlock   bool        `json:"has_block"`
	Points     int         `json:"points"`
	Clusters   int         `json:"clusters"`
	Autoplay   bool        `json:"autoplay"`
	Animating  bool        `json:"animating"`
	Gesture    string      `json:"gesture"`
	Viewport   geom.Rect   `json:"viewport"`
	Error      string      `json:"error,omitempty"`
	ErrorCode  errors.Code `json:"error_code,omitempty"`
}

// View is a composed frame with the overlay state a sink needs.
type View struct {
	Frame   render.Frame
	Tooltip gesture.Tooltip
	Status  Status
}

type fetchResult struct {
	gen    uint64
	points []blocks.Point
	err    error
}

// Panel drives one visualization view. Create it with [New] and activate it
// with [Panel.Run].
type Panel struct {
	provider provider.Provider
	logger   *log.Logger
	src      blocks.PhaseSource
	measurer render.Measurer
	now      func() time.Time

	sink     func(View)
	onStatus func(Status)

	newFrameTicker autoplay.NewTickerFunc
	autoplayOpts   []autoplay.Option
	canvasW        float64
	canvasH        float64

	events chan func()
	done   chan struct{}

	// Owned by the Run goroutine.
	ctx         context.Context
	index       *blocks.Index
	vp          *viewport.Viewport
	gestures    *gesture.Controller
	composer    *render.Composer
	loop        *render.Loop
	auto        *autoplay.Sequencer
	frameTicker autoplay.Ticker
	clusters    []*cluster.Cluster
	generation  uint64
	processing  bool
	start, end  int
	lastErr     error
	waiters     map[uint64]chan error
}

// New returns an inactive panel reading from p.
func New(p provider.Provider, opts ...Option) *Panel {
	pn := &Panel{
		provider:       p,
		logger:         log.New(io.Discard),
		src:            blocks.SharedSource,
		now:            time.Now,
		sink:           func(View) {},
		onStatus:       func(Status) {},
		newFrameTicker: autoplay.RealTicker,
		canvasW:        viewport.DefaultWidth,
		canvasH:        viewport.DefaultHeight,
		events:         make(chan func(), 64),
		done:           make(chan struct{}),
		waiters:        make(map[uint64]chan error),
	}
	for _, opt := range opts {
		opt(pn)
	}
	pn.index = blocks.NewIndex()
	pn.vp = viewport.New(pn.canvasW, pn.canvasH)
	pn.gestures = gesture.New(pn.vp)
	pn.composer = render.NewComposer(pn.measurer)
	pn.loop = render.NewLoop(pn.now)
	pn.auto = autoplay.New(pn.autoplayOpts...)
	return pn
}

// Run processes events until ctx is cancelled, then tears the panel down.
// It must be called exactly once.
func (p *Panel) Run(ctx context.Context) error {
	p.ctx = ctx
	defer close(p.done)
	defer p.teardown()

	p.logger.Debug("panel active", "provider", p.provider.Name())
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-p.events:
			fn()
		case <-p.frameC():
			p.tick()
		case <-p.auto.C():
			p.step()
		}
	}
}

// Done is closed once Run has returned.
func (p *Panel) Done() <-chan struct{} { return p.done }

func (p *Panel) teardown() {
	p.auto.Stop()
	p.loop.Stop()
	p.stopFrames()
	for gen, w := range p.waiters {
		w <- ErrClosed
		delete(p.waiters, gen)
	}
	p.logger.Debug("panel torn down", "frames", p.loop.Frames(), "steps", p.auto.Steps())
}

// post queues fn for the Run goroutine. It reports false once the panel has
// shut down.
func (p *Panel) post(fn func()) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.events <- fn:
		return true
	case <-p.done:
		return false
	}
}

// call runs fn on the Run goroutine and waits for it.
func (p *Panel) call(fn func()) error {
	ran := make(chan struct{})
	if !p.post(func() { fn(); close(ran) }) {
		return ErrClosed
	}
	select {
	case <-ran:
		return nil
	case <-p.done:
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Fetch requests blocks start..end. The range is validated immediately and
// an input validation error is returned without touching any state or
// calling the provider. Otherwise the request proceeds in the background
// and its outcome is reported through the status callback.
func (p *Panel) Fetch(start, end int) error {
	if err := errors.ValidateBlockRange(start, end); err != nil {
		return err
	}
	if !p.post(func() { p.beginFetch(start, end, nil) }) {
		return ErrClosed
	}
	return nil
}

// FetchWait is [Panel.Fetch] that blocks until the response has been applied.
// It returns the fetch or empty-result error, or SUPERSEDED when a newer
// fetch replaced this one first.
func (p *Panel) FetchWait(ctx context.Context, start, end int) error {
	if err := errors.ValidateBlockRange(start, end); err != nil {
		return err
	}
	reply := make(chan error, 1)
	if !p.post(func() { p.beginFetch(start, end, reply) }) {
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Panel) beginFetch(start, end int, reply chan error) {
	p.generation++
	gen := p.generation
	p.processing = true
	p.start, p.end = start, end
	if reply != nil {
		p.waiters[gen] = reply
	}
	p.logger.Debug("fetch", "start", start, "end", end, "generation", gen)
	p.notify()

	ctx := p.ctx
	go func() {
		points, err := p.provider.Fetch(ctx, start, end)
		p.post(func() { p.applyFetch(fetchResult{gen: gen, points: points, err: err}) })
	}()
}

func (p *Panel) applyFetch(r fetchResult) {
	reply := p.waiters[r.gen]
	delete(p.waiters, r.gen)

	if r.gen != p.generation {
		p.logger.Debug("discarding stale response", "generation", r.gen, "latest", p.generation)
		if reply != nil {
			reply <- errors.New(errors.ErrCodeSuperseded, "fetch %d replaced by fetch %d", r.gen, p.generation)
		}
		return
	}
	p.processing = false

	err := r.err
	if err == nil {
		err = p.load(r.points)
	}
	p.lastErr = err

	switch {
	case err == nil:
	case errors.IsEmptyResult(err):
		p.logger.Warn("empty result", "start", p.start, "end", p.end)
		p.index.Reset()
		p.auto.Stop()
		p.setClusters(nil)
	default:
		p.logger.Error("fetch failed", "start", p.start, "end", p.end, "err", err)
	}
	p.notify()
	if reply != nil {
		reply <- err
	}
}

// load replaces the dataset. The index rejects empty input without mutating.
func (p *Panel) load(points []blocks.Point) error {
	if err := p.index.Load(points); err != nil {
		return err
	}
	bounds, _ := p.index.Bounds()
	p.vp.FitToBounds(bounds)
	p.gestures.Reset()
	p.rebuild()

	p.loop.Start()
	p.startFrames()
	p.logger.Info("loaded", "blocks", p.index.Len(), "points", p.index.Count())
	return nil
}

// rebuild recomputes the cluster graphs of the current block.
func (p *Panel) rebuild() {
	began := time.Now()
	p.setClusters(cluster.Build(p.index.Current(), p.src))
	block, _ := p.index.CurrentBlock()
	observability.Frame().OnBlockChange(p.ctx, block, len(p.clusters), time.Since(began))
}

func (p *Panel) setClusters(cs []*cluster.Cluster) {
	p.clusters = cs
	p.gestures.SetClusters(cs)
}

// Input applies a pointer or wheel event.
func (p *Panel) Input(ev gesture.Event) error {
	if !p.post(func() { p.gestures.Handle(ev) }) {
		return ErrClosed
	}
	return nil
}

// Zoom scales the view around the canvas center. Factors below 1 zoom in.
func (p *Panel) Zoom(factor float64) error {
	if factor <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "zoom factor must be positive (got %g)", factor)
	}
	if !p.post(func() {
		w, h := p.vp.Canvas()
		p.vp.Zoom(factor, w/2, h/2)
	}) {
		return ErrClosed
	}
	return nil
}

// Pan moves the view by a screen-space delta.
func (p *Panel) Pan(dx, dy float64) error {
	if !p.post(func() { p.vp.Pan(dx, dy) }) {
		return ErrClosed
	}
	return nil
}

// Fit resets the view to show every loaded point.
func (p *Panel) Fit() error {
	if !p.post(func() {
		if b, ok := p.index.Bounds(); ok {
			p.vp.FitToBounds(b)
		}
	}) {
		return ErrClosed
	}
	return nil
}

// Resize changes the canvas size, keeping the data rectangle.
func (p *Panel) Resize(width, height float64) error {
	if err := errors.ValidateCanvasSize(width, height, viewport.Margin); err != nil {
		return err
	}
	if !p.post(func() { p.vp.Resize(width, height) }) {
		return ErrClosed
	}
	return nil
}

// Select moves the slider to position i of the loaded blocks.
func (p *Panel) Select(i int) error {
	var err error
	if cerr := p.call(func() {
		if err = p.index.Select(i); err == nil {
			p.rebuild()
			p.notify()
		}
	}); cerr != nil {
		return cerr
	}
	return err
}

// SetAutoplay starts or stops stepping through the blocks. Starting requires
// a loaded dataset and always replaces the previous timer.
func (p *Panel) SetAutoplay(on bool) error {
	var err error
	if cerr := p.call(func() {
		switch {
		case !on:
			p.auto.Stop()
		case !p.index.Loaded():
			err = errors.New(errors.ErrCodeInvalidInput, "nothing loaded to play")
			return
		default:
			p.auto.Start()
		}
		p.notify()
	}); cerr != nil {
		return cerr
	}
	return err
}

// Status returns the current status.
func (p *Panel) Status() (Status, error) {
	var st Status
	err := p.call(func() { st = p.status() })
	return st, err
}

// View composes a frame of the current state on demand.
func (p *Panel) View() (View, error) {
	var v View
	err := p.call(func() { v = p.compose(p.loop.Elapsed()) })
	return v, err
}

// Clusters returns the clusters of the current block. The result is shared
// with the panel and must not be modified.
func (p *Panel) Clusters() (block int, clusters []*cluster.Cluster, err error) {
	err = p.call(func() {
		block, _ = p.index.CurrentBlock()
		clusters = p.clusters
	})
	return block, clusters, err
}

func (p *Panel) compose(elapsed time.Duration) View {
	block, ok := p.index.CurrentBlock()
	scene := render.Scene{Block: block, HasBlock: ok, Clusters: p.clusters}
	return View{
		Frame:   p.composer.Compose(scene, p.vp, elapsed),
		Tooltip: p.gestures.Tooltip(),
		Status:  p.status(),
	}
}

func (p *Panel) status() Status {
	st := Status{
		Loaded:     p.index.Loaded(),
		Processing: p.processing,
		Generation: p.generation,
		Start:      p.start,
		End:        p.end,
		Blocks:     p.index.BlockNumbers(),
		Position:   -1,
		Clusters:   len(p.clusters),
		Autoplay:   p.auto.Active(),
		Animating:  p.loop.Animating(),
		Gesture:    p.gestures.State().String(),
		Viewport:   p.vp.Snapshot(),
	}
	if pos, ok := p.index.Position(); ok {
		st.Position = pos
	}
	st.Block, st.HasBlock = p.index.CurrentBlock()
	st.Points = len(p.index.Current())
	if p.lastErr != nil {
		st.Error = errors.UserMessage(p.lastErr)
		st.ErrorCode = errors.GetCode(p.lastErr)
	}
	return st
}

func (p *Panel) notify() {
	p.onStatus(p.status())
}

// step advances autoplay by one block.
func (p *Panel) step() {
	if !p.index.Loaded() {
		p.auto.Stop()
		return
	}
	p.auto.Step(p.index)
	p.rebuild()
	p.notify()
}

// tick draws one frame and pushes it to the sink.
func (p *Panel) tick() {
	more := p.loop.Tick(func(elapsed time.Duration) {
		began := time.Now()
		v := p.compose(elapsed)
		p.sink(v)
		observability.Frame().OnFrame(p.ctx, v.Frame.Block, len(v.Frame.Commands), time.Since(began))
	})
	if !more {
		p.stopFrames()
	}
}

func (p *Panel) startFrames() {
	if p.frameTicker == nil {
		p.frameTicker = p.newFrameTicker(render.FrameInterval)
	}
}

func (p *Panel) stopFrames() {
	if p.frameTicker != nil {
		p.frameTicker.Stop()
		p.frameTicker = nil
	}
}

func (p *Panel) frameC() <-chan time.Time {
	if p.frameTicker == nil {
		return nil
	}
	return p.frameTicker.C()
}
