// Package gesture turns pointer and wheel input into viewport mutations.
//
// # State machine
//
// A [Controller] tracks active contacts (mouse buttons or touches) and moves
// between three states:
//
//	Idle ──1 contact──▶ Panning ──2nd contact──▶ Pinching
//	  ▲                    │                         │
//	  └──────release───────┘◀───one contact left─────┘
//
// Panning is always applied relative to the viewport snapshot taken when the
// gesture started, never incrementally, so repeated small moves cannot drift.
// Pinching keeps the data coordinate under the initial midpoint fixed under
// that same screen position while the view scales by the distance ratio.
//
// When a pinch loses one of its two contacts, panning resumes from the
// remaining contact's current position with a fresh snapshot.
//
// Wheel events bypass the state machine: every tick zooms by a fixed factor
// at the cursor. Hover hit-testing runs on moves while Idle; see [HitTest].
package gesture

import (
	"math"
	"slices"

	"github.com/matzehuels/blockscape/pkg/cluster"
	"github.com/matzehuels/blockscape/pkg/geom"
	"github.com/matzehuels/blockscape/pkg/viewport"
)

// Zoom factors applied per wheel tick.
const (
	WheelZoomIn  = 0.9
	WheelZoomOut = 1.1
)

// Kind identifies an input event.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	PointerLeave
	Wheel
)

var kindNames = [...]string{"down", "move", "up", "leave", "wheel"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps an event name ("down", "move", ...) to its Kind.
func ParseKind(s string) (Kind, bool) {
	i := slices.Index(kindNames[:], s)
	return Kind(i), i >= 0
}

// Event is one pointer or wheel input in canvas pixels.
// ID distinguishes simultaneous contacts; mice use a single id.
type Event struct {
	Kind   Kind    `json:"kind"`
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"delta_y,omitempty"`
}

// State is the gesture currently in progress.
type State int

const (
	Idle State = iota
	Panning
	Pinching
)

func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	default:
		return "idle"
	}
}

type contact struct {
	id   int
	x, y float64
}

// Controller interprets input events against a viewport.
// It is not safe for concurrent use.
type Controller struct {
	vp    *viewport.Viewport
	state State

	// contacts in the order they went down.
	contacts []contact

	// Panning
	panID          int
	startX, startY float64
	snap           geom.Rect

	// Pinching
	pinchA, pinchB int
	startDist      float64
	midX, midY     float64
	midDataX       float64
	midDataY       float64

	clusters []*cluster.Cluster
	tooltip  Tooltip
}

// New returns an idle controller driving vp.
func New(vp *viewport.Viewport) *Controller {
	return &Controller{vp: vp}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// Tooltip returns the hover tooltip from the most recent idle move.
func (c *Controller) Tooltip() Tooltip { return c.tooltip }

// SetClusters replaces the clusters hover moves are tested against. The
// tooltip is hidden since it may point into the previous block.
func (c *Controller) SetClusters(clusters []*cluster.Cluster) {
	c.clusters = clusters
	c.tooltip = Tooltip{}
}

// Reset drops every contact and returns to Idle without touching the view.
func (c *Controller) Reset() {
	c.contacts = c.contacts[:0]
	c.state = Idle
	c.tooltip = Tooltip{}
}

// Handle applies one event. It reports whether the viewport or the tooltip
// changed.
func (c *Controller) Handle(ev Event) bool {
	switch ev.Kind {
	case PointerDown:
		return c.down(ev)
	case PointerMove:
		return c.move(ev)
	case PointerUp, PointerLeave:
		return c.up(ev)
	case Wheel:
		return c.wheel(ev)
	}
	return false
}

func (c *Controller) down(ev Event) bool {
	if i := c.find(ev.ID); i >= 0 {
		c.contacts[i].x, c.contacts[i].y = ev.X, ev.Y
		return false
	}
	c.contacts = append(c.contacts, contact{id: ev.ID, x: ev.X, y: ev.Y})

	switch len(c.contacts) {
	case 1:
		c.beginPan(c.contacts[0])
	case 2:
		c.beginPinch(c.contacts[0], c.contacts[1])
	}
	// A gesture hides any hover tooltip.
	hadTooltip := c.tooltip.Visible
	c.tooltip = Tooltip{}
	return hadTooltip
}

func (c *Controller) move(ev Event) bool {
	i := c.find(ev.ID)
	if i < 0 {
		if c.state == Idle {
			return c.hoverAt(ev.X, ev.Y)
		}
		return false
	}
	c.contacts[i].x, c.contacts[i].y = ev.X, ev.Y

	switch c.state {
	case Panning:
		if ev.ID != c.panID {
			return false
		}
		c.vp.Restore(c.snap)
		c.vp.Pan(ev.X-c.startX, ev.Y-c.startY)
		return true
	case Pinching:
		if ev.ID != c.pinchA && ev.ID != c.pinchB {
			return false
		}
		return c.pinch()
	}
	return false
}

func (c *Controller) up(ev Event) bool {
	i := c.find(ev.ID)
	if i < 0 {
		if ev.Kind == PointerLeave && c.tooltip.Visible {
			c.tooltip = Tooltip{}
			return true
		}
		return false
	}
	c.contacts = slices.Delete(c.contacts, i, i+1)

	switch {
	case len(c.contacts) == 0:
		c.state = Idle
	case c.state == Pinching && (ev.ID == c.pinchA || ev.ID == c.pinchB):
		if len(c.contacts) >= 2 {
			c.beginPinch(c.contacts[0], c.contacts[1])
		} else {
			c.beginPan(c.contacts[0])
		}
	case c.state == Panning && ev.ID == c.panID:
		c.beginPan(c.contacts[0])
	}
	return false
}

func (c *Controller) wheel(ev Event) bool {
	switch {
	case ev.DeltaY < 0:
		c.vp.Zoom(WheelZoomIn, ev.X, ev.Y)
	case ev.DeltaY > 0:
		c.vp.Zoom(WheelZoomOut, ev.X, ev.Y)
	default:
		return false
	}
	return true
}

func (c *Controller) beginPan(p contact) {
	c.state = Panning
	c.panID = p.id
	c.startX, c.startY = p.x, p.y
	c.snap = c.vp.Snapshot()
}

func (c *Controller) beginPinch(a, b contact) {
	c.state = Pinching
	c.pinchA, c.pinchB = a.id, b.id
	c.startDist = math.Hypot(b.x-a.x, b.y-a.y)
	c.midX, c.midY = (a.x+b.x)/2, (a.y+b.y)/2
	c.snap = c.vp.Snapshot()
	c.midDataX, c.midDataY = c.vp.ScreenToData(c.midX, c.midY)
}

func (c *Controller) pinch() bool {
	if c.startDist == 0 {
		return false
	}
	a, b := c.contacts[c.find(c.pinchA)], c.contacts[c.find(c.pinchB)]
	ratio := math.Hypot(b.x-a.x, b.y-a.y) / c.startDist
	if ratio == 0 {
		return false
	}
	c.vp.Anchor(c.snap.W/ratio, c.snap.H/ratio, c.midX, c.midY, c.midDataX, c.midDataY)
	return true
}

func (c *Controller) hoverAt(sx, sy float64) bool {
	prev := c.tooltip
	c.tooltip = Tooltip{}
	if hit, ok := HitTest(c.vp, c.clusters, sx, sy); ok {
		c.tooltip = Tooltip{Visible: true, X: sx, Y: sy, Text: hit.Text, Hit: hit}
	}
	return c.tooltip != prev
}

func (c *Controller) find(id int) int {
	return slices.IndexFunc(c.contacts, func(p contact) bool { return p.id == id })
}
