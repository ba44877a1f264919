package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blockscape/pkg/render"
)

// TermOption configures terminal rendering.
type TermOption func(*termRenderer)

type termRenderer struct {
	plain bool
}

// WithPlain disables ANSI colors.
func WithPlain() TermOption { return func(r *termRenderer) { r.plain = true } }

// Each terminal cell holds a 2×4 braille dot grid.
const (
	dotsX = 2
	dotsY = 4
)

// maxDot bounds dot coordinates so off-canvas points convert to int safely.
const maxDot = 1 << 30

// braille dot bits indexed by [column][row] within a cell.
var brailleBits = [dotsX][dotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type termCanvas struct {
	cols, rows int
	sx, sy     float64 // frame pixels to dots
	mask       [][]uint8
	color      [][]string
	text       [][]rune
}

func newTermCanvas(f render.Frame, cols, rows int) *termCanvas {
	c := &termCanvas{cols: cols, rows: rows}
	if f.Width > 0 && f.Height > 0 {
		c.sx = float64(cols*dotsX) / f.Width
		c.sy = float64(rows*dotsY) / f.Height
	}
	c.clear()
	return c
}

func (c *termCanvas) clear() {
	c.mask = make([][]uint8, c.rows)
	c.color = make([][]string, c.rows)
	c.text = make([][]rune, c.rows)
	for y := range c.rows {
		c.mask[y] = make([]uint8, c.cols)
		c.color[y] = make([]string, c.cols)
		c.text[y] = make([]rune, c.cols)
	}
}

func (c *termCanvas) dot(mx, my int, hex string) {
	cx, cy := mx/dotsX, my/dotsY
	if mx < 0 || my < 0 || cx >= c.cols || cy >= c.rows {
		return
	}
	c.mask[cy][cx] |= brailleBits[mx%dotsX][my%dotsY]
	c.color[cy][cx] = hex
}

// line draws a Bresenham line in dot coordinates.
func (c *termCanvas) line(x0, y0, x1, y1 int, hex string) {
	dx, sx := abs(x1-x0), 1
	if x0 > x1 {
		sx = -1
	}
	dy, sy := -abs(y1-y0), 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.dot(x0, y0, hex)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *termCanvas) put(cx, cy int, s string, hex string) {
	if cy < 0 || cy >= c.rows {
		return
	}
	for i, r := range []rune(s) {
		x := cx + i
		if x < 0 || x >= c.cols {
			continue
		}
		c.text[cy][x] = r
		c.color[cy][x] = hex
	}
}

func (c *termCanvas) toDots(x, y float64) (int, int) {
	return floorInt(x * c.sx), floorInt(y * c.sy)
}

func (c *termCanvas) toCell(x, y float64) (int, int) {
	return floorInt(x * c.sx / dotsX), floorInt(y * c.sy / dotsY)
}

// edge draws a frame-space segment clipped to the dot grid, so the line walk
// never leaves the canvas however far the endpoints lie.
func (c *termCanvas) edge(x0, y0, x1, y1 float64, hex string) {
	ax, ay, bx, by, ok := clipSegment(x0*c.sx, y0*c.sy, x1*c.sx, y1*c.sy,
		float64(c.cols*dotsX), float64(c.rows*dotsY))
	if !ok {
		return
	}
	c.line(floorInt(ax), floorInt(ay), floorInt(bx), floorInt(by), hex)
}

// clipSegment clips a segment to [0, w] × [0, h] (Liang–Barsky). It reports
// false when the segment misses the rectangle or has a non-finite endpoint.
func clipSegment(x0, y0, x1, y1, w, h float64) (ax, ay, bx, by float64, ok bool) {
	for _, v := range [4]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, 0, false
		}
	}
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{{-dx, x0}, {dx, w - x0}, {-dy, y0}, {dy, h - y0}} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	// Far endpoints lose precision in x0+t*dx; pin the result to the box.
	ax, ay = clampTo(x0+t0*dx, w), clampTo(y0+t0*dy, h)
	bx, by = clampTo(x0+t1*dx, w), clampTo(y0+t1*dy, h)
	return ax, ay, bx, by, true
}

func clampTo(v, hi float64) float64 { return math.Max(0, math.Min(hi, v)) }

// floorInt rounds toward negative infinity and saturates at ±maxDot. NaN maps
// to -1, which every caller treats as off-canvas.
func floorInt(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	return int(math.Max(-maxDot, math.Min(maxDot, math.Floor(v))))
}

// RenderTerm approximates the frame on a cols×rows character grid. Edges and
// points become braille dots; centroids, labels and the watermark become
// characters.
func RenderTerm(f render.Frame, cols, rows int, opts ...TermOption) string {
	r := termRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if cols <= 0 || rows <= 0 {
		return ""
	}

	c := newTermCanvas(f, cols, rows)
	for _, cmd := range f.Commands {
		hex := cmd.Paint.Hex()
		switch cmd.Kind {
		case render.KindClear:
			c.clear()
		case render.KindEdge:
			c.edge(cmd.X, cmd.Y, cmd.X2, cmd.Y2, hex)
		case render.KindPoint:
			mx, my := c.toDots(cmd.X, cmd.Y)
			c.dot(mx, my, hex)
			c.dot(mx+1, my, hex)
			c.dot(mx, my+1, hex)
			c.dot(mx+1, my+1, hex)
		case render.KindCentroid:
			cx, cy := c.toCell(cmd.X, cmd.Y)
			c.put(cx, cy, "◆", hex)
		case render.KindLabel:
			cx, cy := c.toCell(cmd.X, cmd.Y)
			for i, line := range cmd.Lines {
				c.put(cx+1, cy+i, line, hex)
			}
		case render.KindWatermark:
			cx, cy := c.toCell(cmd.X, cmd.Y)
			for i, line := range cmd.Lines {
				c.put(cx-len([]rune(line)), cy+i, line, hex)
			}
		}
	}
	return c.String(!r.plain)
}

func (c *termCanvas) String(colored bool) string {
	var sb strings.Builder
	for y := range c.rows {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range c.cols {
			ch := ' '
			switch {
			case c.text[y][x] != 0:
				ch = c.text[y][x]
			case c.mask[y][x] != 0:
				ch = rune(0x2800 + int(c.mask[y][x]))
			}
			if colored && ch != ' ' && c.color[y][x] != "" {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.color[y][x])).Render(string(ch)))
				continue
			}
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
