package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/blockscape/pkg/fonts"
	"github.com/matzehuels/blockscape/pkg/gesture"
	"github.com/matzehuels/blockscape/pkg/render"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	tooltip gesture.Tooltip
}

// WithTooltip overlays a hover tooltip at the pointer position.
func WithTooltip(t gesture.Tooltip) SVGOption { return func(r *svgRenderer) { r.tooltip = t } }

// RenderSVG writes the frame as a standalone SVG document.
func RenderSVG(f render.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.Width, f.Height, f.Width, f.Height)
	fmt.Fprintf(&buf, "  <style>text { font-family: %s; }</style>\n", fonts.FallbackFontFamily)

	for _, c := range f.Commands {
		switch c.Kind {
		case render.KindClear:
			fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", c.Paint.Hex())
		case render.KindEdge:
			fmt.Fprintf(&buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3f" stroke-width="1"/>`+"\n",
				c.X, c.Y, c.X2, c.Y2, c.Paint.Hex(), c.Paint.Alpha)
		case render.KindPoint:
			fmt.Fprintf(&buf, `  <circle cx="%.2f" cy="%.2f" r="%.1f" fill="%s" fill-opacity="%.3f"/>`+"\n",
				c.X, c.Y, c.Size, c.Paint.Hex(), c.Paint.Alpha)
		case render.KindCentroid:
			fmt.Fprintf(&buf, `  <path d="M%.2f,%.2f L%.2f,%.2f L%.2f,%.2f L%.2f,%.2f Z" fill="%s"/>`+"\n",
				c.X, c.Y-c.Size, c.X+c.Size, c.Y, c.X, c.Y+c.Size, c.X-c.Size, c.Y, c.Paint.Hex())
		case render.KindLabel, render.KindWatermark:
			writeText(&buf, c)
		}
	}

	if r.tooltip.Visible {
		writeTooltip(&buf, r.tooltip, f.Width)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeText(buf *bytes.Buffer, c render.Command) {
	anchor := "start"
	if c.Align == render.AlignRight {
		anchor = "end"
	}
	fmt.Fprintf(buf, `  <text class="%s" x="%.2f" y="%.2f" font-size="%.0f" text-anchor="%s" fill="%s" fill-opacity="%.3f">`,
		c.Kind, c.X, c.Y, c.FontSize, anchor, c.Paint.Hex(), c.Paint.Alpha)
	for i, line := range c.Lines {
		dy := 0.0
		if i > 0 {
			dy = c.LineHeight
		}
		fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.1f">`, c.X, dy)
		escape(buf, line)
		buf.WriteString("</tspan>")
	}
	buf.WriteString("</text>\n")
}

func writeTooltip(buf *bytes.Buffer, t gesture.Tooltip, canvasW float64) {
	const pad, size = 6.0, 12.0
	w := float64(len([]rune(t.Text)))*size*0.6 + 2*pad
	x := min(t.X+12, canvasW-w)
	y := t.Y + 12
	fmt.Fprintf(buf, `  <g class="tooltip"><rect x="%.2f" y="%.2f" width="%.1f" height="%.1f" rx="3" fill="#1b1f2a" fill-opacity="0.9"/>`,
		x, y, w, size+2*pad)
	fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" font-size="%.0f" fill="#e6e6e6">`, x+pad, y+pad+size*0.85, size)
	escape(buf, t.Text)
	buf.WriteString("</text></g>\n")
}

func escape(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}
