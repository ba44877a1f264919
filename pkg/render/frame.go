package render

import (
	"encoding/json"

	"github.com/lucasb-eyer/go-colorful"
)

// Kind identifies a draw command.
type Kind string

const (
	KindClear     Kind = "clear"
	KindEdge      Kind = "edge"
	KindPoint     Kind = "point"
	KindCentroid  Kind = "centroid"
	KindLabel     Kind = "label"
	KindWatermark Kind = "watermark"
)

// Align is the horizontal anchor of text commands.
type Align string

const (
	AlignLeft  Align = "left"
	AlignRight Align = "right"
)

// Paint is a color with opacity in [0, 1].
type Paint struct {
	colorful.Color
	Alpha float64
}

// Hex returns the color as #rrggbb.
func (p Paint) Hex() string { return p.Clamped().Hex() }

// RGBA returns the clamped channels and alpha in [0, 1].
func (p Paint) RGBA() (r, g, b, a float64) {
	c := p.Clamped()
	return c.R, c.G, c.B, p.Alpha
}

// MarshalJSON encodes the paint as {"hex": "#rrggbb", "alpha": a}.
func (p Paint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Hex   string  `json:"hex"`
		Alpha float64 `json:"alpha"`
	}{p.Hex(), p.Alpha})
}

// Command is one draw operation in canvas pixels.
//
// Edges use (X, Y)-(X2, Y2). Points and centroids are centered on (X, Y) with
// Size as radius or half-diagonal. Text commands place the first line's
// baseline at (X, Y) and step down by LineHeight for each further line.
type Command struct {
	Kind       Kind     `json:"kind"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	X2         float64  `json:"x2,omitempty"`
	Y2         float64  `json:"y2,omitempty"`
	Size       float64  `json:"size,omitempty"`
	Paint      Paint    `json:"paint"`
	Lines      []string `json:"lines,omitempty"`
	Align      Align    `json:"align,omitempty"`
	FontSize   float64  `json:"font_size,omitempty"`
	LineHeight float64  `json:"line_height,omitempty"`
	Cluster    int      `json:"cluster,omitempty"`
}

// Frame is the ordered output of one draw pass.
type Frame struct {
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Block    int       `json:"block,omitempty"`
	HasBlock bool      `json:"has_block"`
	Seq      uint64    `json:"seq"`
	Commands []Command `json:"commands"`
}

// Count returns how many commands of kind the frame holds.
func (f Frame) Count(kind Kind) int {
	n := 0
	for _, c := range f.Commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Of returns the commands of kind, in draw order.
func (f Frame) Of(kind Kind) []Command {
	var out []Command
	for _, c := range f.Commands {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
