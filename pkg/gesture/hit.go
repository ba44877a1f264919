package gesture

import (
	"math"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/cluster"
	"github.com/matzehuels/blockscape/pkg/viewport"
)

// Hover hit radii in screen pixels.
const (
	CentroidHitRadius = 10.0
	PointHitRadius    = 6.0
)

// HitKind tells what a hover landed on.
type HitKind int

const (
	HitCentroid HitKind = iota + 1
	HitPoint
)

// Hit is the target under the cursor.
type Hit struct {
	Kind    HitKind
	Cluster *cluster.Cluster
	Point   *blocks.Point // nil for centroid hits
	Text    string
}

// Tooltip is the hover overlay anchored at the pointer.
type Tooltip struct {
	Visible bool
	X, Y    float64
	Text    string
	Hit     Hit
}

// HitTest finds what lies under screen point (sx, sy).
//
// Centroids are searched first across every cluster, then individual points.
// The first match in cluster order wins. A centroid hit carries the cluster's
// long summary; a point hit carries the post content.
func HitTest(vp *viewport.Viewport, clusters []*cluster.Cluster, sx, sy float64) (Hit, bool) {
	for _, c := range clusters {
		cx, cy := vp.DataToScreen(c.CentroidX, c.CentroidY)
		if math.Hypot(cx-sx, cy-sy) <= CentroidHitRadius {
			return Hit{Kind: HitCentroid, Cluster: c, Text: c.LongSummary}, true
		}
	}
	for _, c := range clusters {
		for _, p := range c.Points {
			px, py := vp.DataToScreen(p.X, p.Y)
			if math.Hypot(px-sx, py-sy) <= PointHitRadius {
				return Hit{Kind: HitPoint, Cluster: c, Point: p, Text: p.PostContent}, true
			}
		}
	}
	return Hit{}, false
}
