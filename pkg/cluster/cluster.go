// Package cluster derives the per-block cluster aggregates drawn by the
// renderer.
//
// A [Cluster] is keyed by (block number, cluster id). It carries the centroid
// and summaries shared by its points, a hue derived from the id, and a
// connected edge skeleton produced by [BuildEdges]. Clusters are never patched:
// [Build] recomputes every cluster of a block from its point list each time the
// active block changes.
package cluster

import (
	"math"

	"github.com/matzehuels/blockscape/pkg/blocks"
)

// Edge joins two points of a cluster. From and To index into [Cluster.Points];
// direction only records the order in which the skeleton grew.
type Edge struct {
	From       int     `json:"from"`
	To         int     `json:"to"`
	BlinkPhase float64 `json:"-"`
}

// Cluster is the aggregate of every point sharing one cluster id in one block.
type Cluster struct {
	Block        int
	ID           int
	CentroidX    float64
	CentroidY    float64
	ShortSummary string
	LongSummary  string
	Hue          int

	// Points reference the owning index's records; they are not copies.
	Points []*blocks.Point
	Edges  []Edge
}

// Hue maps a cluster id to a hue in [0, 360). Ids 36 apart share a hue.
func Hue(id int) int {
	return ((id*50)%360 + 360) % 360
}

// Build groups the points of one block by cluster id, in order of first
// appearance, and builds each group's edge skeleton. Points are referenced in
// place, so the slice must outlive the returned clusters.
func Build(points []blocks.Point, src blocks.PhaseSource) []*Cluster {
	var clusters []*Cluster
	byID := make(map[int]*Cluster)

	for i := range points {
		p := &points[i]
		c, ok := byID[p.ClusterID]
		if !ok {
			c = &Cluster{
				Block:        p.BlockNumber,
				ID:           p.ClusterID,
				CentroidX:    p.CentroidX,
				CentroidY:    p.CentroidY,
				ShortSummary: p.SummaryShort,
				LongSummary:  p.SummaryLong,
				Hue:          Hue(p.ClusterID),
			}
			byID[p.ClusterID] = c
			clusters = append(clusters, c)
		}
		c.Points = append(c.Points, p)
	}

	for _, c := range clusters {
		c.Edges = BuildEdges(c.Points, src)
	}
	return clusters
}

// BuildEdges grows a connected skeleton over points.
//
// The frontier starts as point 0. Each step takes the globally closest pair
// (frontier member, outside point) by Euclidean distance, records the edge and
// moves the point into the frontier. Placed edges are never reconsidered, so n
// points always yield exactly n-1 edges. Every edge gets a fresh blink phase
// from src.
//
// The per-point best distance is maintained incrementally, which keeps the
// whole build at O(n²).
func BuildEdges(points []*blocks.Point, src blocks.PhaseSource) []Edge {
	n := len(points)
	if n < 2 {
		return nil
	}

	inFrontier := make([]bool, n)
	bestDist := make([]float64, n)
	bestFrom := make([]int, n)

	inFrontier[0] = true
	for i := 1; i < n; i++ {
		bestDist[i] = dist(points[0], points[i])
	}

	edges := make([]Edge, 0, n-1)
	for range n - 1 {
		next := -1
		for i := 1; i < n; i++ {
			if inFrontier[i] {
				continue
			}
			if next < 0 || bestDist[i] < bestDist[next] {
				next = i
			}
		}

		inFrontier[next] = true
		edges = append(edges, Edge{
			From:       bestFrom[next],
			To:         next,
			BlinkPhase: blocks.RandomPhase(src),
		})

		for i := 1; i < n; i++ {
			if inFrontier[i] {
				continue
			}
			if d := dist(points[next], points[i]); d < bestDist[i] {
				bestDist[i] = d
				bestFrom[i] = next
			}
		}
	}
	return edges
}

func dist(a, b *blocks.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
