// Package geom holds the small rectangle types shared by the block index and
// the viewport model.
package geom

import "math"

// Box is an axis-aligned bounding box in data space.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return (b.MinY + b.MaxY) / 2 }

// Extend grows the box to include (x, y).
func (b Box) Extend(x, y float64) Box {
	return Box{
		MinX: math.Min(b.MinX, x), MinY: math.Min(b.MinY, y),
		MaxX: math.Max(b.MaxX, x), MaxY: math.Max(b.MaxY, y),
	}
}

// Nondegenerate widens any zero-extent axis to a unit extent around its
// center, so rectangles fitted into the box keep a positive size.
func (b Box) Nondegenerate() Box {
	if b.Width() <= 0 {
		c := b.CenterX()
		b.MinX, b.MaxX = c-0.5, c+0.5
	}
	if b.Height() <= 0 {
		c := b.CenterY()
		b.MinY, b.MaxY = c-0.5, c+0.5
	}
	return b
}

// BoxAround returns a zero-size box positioned at (x, y).
func BoxAround(x, y float64) Box {
	return Box{MinX: x, MinY: y, MaxX: x, MaxY: y}
}

// Rect is a rectangle with a bottom-left origin.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the right edge of the rectangle.
func (r Rect) Right() float64 { return r.X + r.W }

// Top returns the top edge of the rectangle.
func (r Rect) Top() float64 { return r.Y + r.H }

// Inside reports whether r lies entirely within b, allowing for float
// rounding at the edges.
func (r Rect) Inside(b Box) bool {
	eps := 1e-9 * (1 + math.Abs(b.MinX) + math.Abs(b.MaxX) + math.Abs(b.MinY) + math.Abs(b.MaxY))
	return r.X >= b.MinX-eps && r.Y >= b.MinY-eps && r.Right() <= b.MaxX+eps && r.Top() <= b.MaxY+eps
}
