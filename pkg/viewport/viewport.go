// Package viewport maps a rectangle of data space onto a fixed-size canvas.
//
// # Coordinates
//
// Data space has a bottom-left origin: y grows upward. Screen space is pixel
// based with a top-left origin: y grows downward. The transform insets a fixed
// [Margin] from every canvas edge so extreme points never touch the border:
//
//	sx = m + (px - x) * (cw - 2m) / w
//	sy = ch - m - (py - y) * (ch - 2m) / h
//
// # Invariant
//
// Every mutation ([Viewport.FitToBounds], [Viewport.Zoom], [Viewport.Pan],
// [Viewport.Anchor], [Viewport.SetBounds]) ends in [Viewport.Clamp], which keeps
// the rectangle inside the global bounding box of the loaded points with a
// strictly positive size no larger than the box. Callers never clamp
// themselves.
package viewport

import (
	"github.com/matzehuels/blockscape/pkg/geom"
)

const (
	// Margin is the pixel inset kept free on all four canvas edges.
	Margin = 50.0

	// FitPadding scales the bounding box extent when fitting the view.
	FitPadding = 1.1

	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 600.0
)

// Viewport is the data-space window currently mapped onto the canvas.
// It is not safe for concurrent use.
type Viewport struct {
	geom.Rect

	canvasW, canvasH float64
	bounds           geom.Box
}

// New returns a viewport for a canvas of the given pixel size.
// Until bounds are set the view covers the unit square.
func New(canvasW, canvasH float64) *Viewport {
	v := &Viewport{canvasW: canvasW, canvasH: canvasH}
	v.bounds = geom.Box{MaxX: 1, MaxY: 1}
	v.Rect = geom.Rect{W: 1, H: 1}
	return v
}

// Canvas returns the canvas size in pixels.
func (v *Viewport) Canvas() (w, h float64) { return v.canvasW, v.canvasH }

// Bounds returns the box the view is clamped into.
func (v *Viewport) Bounds() geom.Box { return v.bounds }

// Resize changes the canvas size. The data rectangle is kept.
func (v *Viewport) Resize(canvasW, canvasH float64) {
	v.canvasW, v.canvasH = canvasW, canvasH
}

// SetBounds replaces the clamping box and re-clamps the view.
// Zero-extent axes are widened so the view keeps a positive size.
func (v *Viewport) SetBounds(b geom.Box) {
	v.bounds = b.Nondegenerate()
	v.Clamp()
}

// FitToBounds sizes the view to the box extent plus padding, centers it on the
// box, and clamps. It also makes box the clamping bounds.
func (v *Viewport) FitToBounds(b geom.Box) {
	v.bounds = b.Nondegenerate()
	w := v.bounds.Width() * FitPadding
	h := v.bounds.Height() * FitPadding
	v.Rect = geom.Rect{
		X: v.bounds.CenterX() - w/2,
		Y: v.bounds.CenterY() - h/2,
		W: w,
		H: h,
	}
	v.Clamp()
}

// innerW and innerH are the drawable extents between the margins.
func (v *Viewport) innerW() float64 { return v.canvasW - 2*Margin }
func (v *Viewport) innerH() float64 { return v.canvasH - 2*Margin }

// ScaleX returns pixels per data unit on the horizontal axis.
func (v *Viewport) ScaleX() float64 { return v.innerW() / v.W }

// ScaleY returns pixels per data unit on the vertical axis.
func (v *Viewport) ScaleY() float64 { return v.innerH() / v.H }

// DataToScreen maps a data-space point to canvas pixels.
func (v *Viewport) DataToScreen(px, py float64) (sx, sy float64) {
	sx = Margin + (px-v.X)*v.ScaleX()
	sy = v.canvasH - Margin - (py-v.Y)*v.ScaleY()
	return sx, sy
}

// ScreenToData maps canvas pixels back to data space.
func (v *Viewport) ScreenToData(sx, sy float64) (px, py float64) {
	px = v.X + (sx-Margin)/v.ScaleX()
	py = v.Y + (v.canvasH-Margin-sy)/v.ScaleY()
	return px, py
}

// Zoom scales the view by factor around a screen pivot. The data coordinate
// under the pivot stays under the same pixel. factor < 1 zooms in.
func (v *Viewport) Zoom(factor, sx, sy float64) {
	px, py := v.ScreenToData(sx, sy)
	v.Anchor(v.W*factor, v.H*factor, sx, sy, px, py)
}

// Anchor sets the view size to w×h and positions it so that data point
// (px, py) lands on screen point (sx, sy), then clamps.
func (v *Viewport) Anchor(w, h, sx, sy, px, py float64) {
	if w <= 0 || h <= 0 {
		return
	}
	v.W, v.H = w, h
	v.X = px - (sx-Margin)/v.ScaleX()
	v.Y = py - (v.canvasH-Margin-sy)/v.ScaleY()
	v.Clamp()
}

// Pan shifts the view by a screen-space delta. Dragging right moves the
// content right, so the window moves left in data space; the y sign is
// flipped because screen y grows downward.
func (v *Viewport) Pan(dx, dy float64) {
	v.X -= dx / v.ScaleX()
	v.Y += dy / v.ScaleY()
	v.Clamp()
}

// Clamp enforces the viewport invariant. Oversized views shrink to the box
// extent; otherwise the view is only translated back inside the box.
// Clamp is idempotent: a clamped view is a fixed point.
func (v *Viewport) Clamp() {
	b := v.bounds
	v.X, v.W = clampAxis(v.X, v.W, b.MinX, b.MaxX)
	v.Y, v.H = clampAxis(v.Y, v.H, b.MinY, b.MaxY)
}

// clampAxis fits the interval [pos, pos+size] into [lo, hi]. A full-extent
// interval is pinned to lo exactly, since hi-size can round past lo.
func clampAxis(pos, size, lo, hi float64) (float64, float64) {
	if size >= hi-lo {
		return lo, hi - lo
	}
	maxPos := hi - size
	if maxPos < lo {
		maxPos = lo
	}
	return min(max(pos, lo), maxPos), size
}

// Snapshot returns a copy of the data rectangle.
func (v *Viewport) Snapshot() geom.Rect { return v.Rect }

// Restore replaces the data rectangle with a previous snapshot and clamps.
func (v *Viewport) Restore(r geom.Rect) {
	v.Rect = r
	v.Clamp()
}
