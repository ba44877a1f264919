package render

import (
	"fmt"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/blockscape/pkg/cluster"
	"github.com/matzehuels/blockscape/pkg/viewport"
)

// Geometry of the drawn glyphs, in pixels.
const (
	PointRadius  = 3.0
	CentroidSize = 7.0

	LabelOffsetX    = 12.0
	LabelOffsetY    = 4.0
	LabelWrapWidth  = 160.0
	LabelFontSize   = 12.0
	LabelLineHeight = 14.0

	WatermarkFontSize = 16.0
	WatermarkInset    = 14.0
)

// Flicker parameters. Speed is in radians per second.
const (
	FlickerSpeed = 2.0

	EdgeAlphaBase  = 0.35
	EdgeAlphaAmp   = 0.2
	PointAlphaBase = 0.7
	PointAlphaAmp  = 0.3
)

// WatermarkPrefix precedes the block number in the top-right corner.
const WatermarkPrefix = "Block Height: "

var (
	background     = Paint{Color: colorful.Color{R: 0.04, G: 0.05, B: 0.08}, Alpha: 1}
	watermarkPaint = Paint{Color: colorful.Color{R: 0.75, G: 0.78, B: 0.85}, Alpha: 0.8}
)

// Scene is the state a draw pass reads: the current block and its clusters.
type Scene struct {
	Block    int
	HasBlock bool
	Clusters []*cluster.Cluster
}

// Composer builds frames. The zero value is not usable; create one with
// [NewComposer]. A Composer is not safe for concurrent use because its
// measurer may hold font caches.
type Composer struct {
	measure Measurer
	seq     uint64
}

// NewComposer returns a composer that wraps labels with m. A nil m falls back
// to the built-in font at [LabelFontSize].
func NewComposer(m Measurer) *Composer {
	if m == nil {
		m = DefaultMeasurer()
	}
	return &Composer{measure: m}
}

// Compose draws scene through vp at the given point of the animation clock.
func (c *Composer) Compose(scene Scene, vp *viewport.Viewport, elapsed time.Duration) Frame {
	w, h := vp.Canvas()
	c.seq++
	f := Frame{Width: w, Height: h, Block: scene.Block, HasBlock: scene.HasBlock, Seq: c.seq}
	t := elapsed.Seconds()

	f.Commands = append(f.Commands, Command{Kind: KindClear, Paint: background})

	for _, cl := range scene.Clusters {
		for _, e := range cl.Edges {
			a, b := cl.Points[e.From], cl.Points[e.To]
			x1, y1 := vp.DataToScreen(a.X, a.Y)
			x2, y2 := vp.DataToScreen(b.X, b.Y)
			f.Commands = append(f.Commands, Command{
				Kind: KindEdge, X: x1, Y: y1, X2: x2, Y2: y2,
				Paint:   edgePaint(cl.Hue, flicker(t, e.BlinkPhase, EdgeAlphaBase, EdgeAlphaAmp)),
				Cluster: cl.ID,
			})
		}
	}

	for _, cl := range scene.Clusters {
		for _, p := range cl.Points {
			x, y := vp.DataToScreen(p.X, p.Y)
			f.Commands = append(f.Commands, Command{
				Kind: KindPoint, X: x, Y: y, Size: PointRadius,
				Paint:   pointPaint(cl.Hue, flicker(t, p.BlinkPhase, PointAlphaBase, PointAlphaAmp)),
				Cluster: cl.ID,
			})
		}
	}

	for _, cl := range scene.Clusters {
		x, y := vp.DataToScreen(cl.CentroidX, cl.CentroidY)
		f.Commands = append(f.Commands, Command{
			Kind: KindCentroid, X: x, Y: y, Size: CentroidSize,
			Paint:   centroidPaint(cl.Hue),
			Cluster: cl.ID,
		})
		if cl.ShortSummary == "" {
			continue
		}
		f.Commands = append(f.Commands, Command{
			Kind:       KindLabel,
			X:          x + LabelOffsetX,
			Y:          y + LabelOffsetY,
			Lines:      Wrap(cl.ShortSummary, LabelWrapWidth, c.measure),
			Align:      AlignLeft,
			FontSize:   LabelFontSize,
			LineHeight: LabelLineHeight,
			Paint:      labelPaint(cl.Hue),
			Cluster:    cl.ID,
		})
	}

	if scene.HasBlock {
		f.Commands = append(f.Commands, Command{
			Kind:       KindWatermark,
			X:          w - WatermarkInset,
			Y:          WatermarkInset + WatermarkFontSize,
			Lines:      []string{Watermark(scene.Block)},
			Align:      AlignRight,
			FontSize:   WatermarkFontSize,
			LineHeight: WatermarkFontSize,
			Paint:      watermarkPaint,
		})
	}
	return f
}

// Watermark returns the corner text for block n.
func Watermark(n int) string {
	return fmt.Sprintf("%s%d", WatermarkPrefix, n)
}

func flicker(t, phase, base, amp float64) float64 {
	return base + amp*math.Sin(t*FlickerSpeed+phase)
}

func edgePaint(hue int, alpha float64) Paint {
	return Paint{Color: colorful.Hsl(float64(hue), 0.7, 0.5), Alpha: alpha}
}

func pointPaint(hue int, alpha float64) Paint {
	return Paint{Color: colorful.Hsl(float64(hue), 0.85, 0.6), Alpha: alpha}
}

func centroidPaint(hue int) Paint {
	return Paint{Color: colorful.Hsl(float64(hue), 0.9, 0.75), Alpha: 1}
}

func labelPaint(hue int) Paint {
	return Paint{Color: colorful.Hsl(float64(hue), 0.3, 0.9), Alpha: 0.95}
}
