package sink

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/matzehuels/blockscape/pkg/fonts"
	"github.com/matzehuels/blockscape/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the PNG scale factor (default 1). A scale of 2 produces an
// image suitable for high-DPI displays.
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG rasterizes the frame.
func RenderPNG(f render.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := int(f.Width*r.scale+0.5), int(f.Height*r.scale+0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png: empty canvas %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)

	for _, c := range f.Commands {
		dc.SetRGBA(c.Paint.RGBA())
		switch c.Kind {
		case render.KindClear:
			dc.Clear()
		case render.KindEdge:
			dc.SetLineWidth(1)
			dc.DrawLine(c.X, c.Y, c.X2, c.Y2)
			dc.Stroke()
		case render.KindPoint:
			dc.DrawCircle(c.X, c.Y, c.Size)
			dc.Fill()
		case render.KindCentroid:
			diamond(dc, c.X, c.Y, c.Size)
			dc.Fill()
		case render.KindLabel, render.KindWatermark:
			if err := drawText(dc, c); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("png: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func diamond(dc *gg.Context, x, y, s float64) {
	dc.MoveTo(x, y-s)
	dc.LineTo(x+s, y)
	dc.LineTo(x, y+s)
	dc.LineTo(x-s, y)
	dc.ClosePath()
}

func drawText(dc *gg.Context, c render.Command) error {
	face, err := fonts.Face(c.FontSize)
	if err != nil {
		return fmt.Errorf("png: load font: %w", err)
	}
	dc.SetFontFace(face)

	ax := 0.0
	if c.Align == render.AlignRight {
		ax = 1
	}
	for i, line := range c.Lines {
		dc.DrawStringAnchored(line, c.X, c.Y+float64(i)*c.LineHeight, ax, 0)
	}
	return nil
}
