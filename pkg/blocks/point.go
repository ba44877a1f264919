// Package blocks holds fetched points bucketed by block number.
//
// # Overview
//
// A data provider returns, for a range of blocks, an ordered list of point
// records. Each record is a 2-D embedding of one post together with the
// cluster it belongs to. [Decode] turns the provider's positional tuples into
// [Point] values and an [Index] buckets them by block so a UI can step through
// per-block snapshots.
//
// # Wire Format
//
// Records arrive as JSON arrays of exactly ten positional fields:
//
//	[blockNumber, postLink, postContent, x, y, clusterId,
//	 centroidX, centroidY, clusterSummaryShort, clusterSummaryLong]
//
// A response that is not a list, or any record of the wrong shape, is rejected
// as a whole with MALFORMED_PAYLOAD so the caller never sees a partial dataset.
//
// # Stepping
//
// After [Index.Load] the index has a current position into the ascending list
// of block numbers. [Index.Advance] wraps around past the last block, which is
// what autoplay relies on.
package blocks

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/blockscape/pkg/geom"
)

// Point is one visualized post record positioned in the embedding space.
//
// Points are immutable after decoding. BlinkPhase is assigned once from a
// random source and only drives render-time flicker.
type Point struct {
	BlockNumber  int     `json:"block_number" bson:"block_number"`
	PostLink     string  `json:"post_link" bson:"post_link"`
	PostContent  string  `json:"post_content" bson:"post_content"`
	X            float64 `json:"x" bson:"x"`
	Y            float64 `json:"y" bson:"y"`
	ClusterID    int     `json:"cluster_id" bson:"cluster_id"`
	CentroidX    float64 `json:"centroid_x" bson:"centroid_x"`
	CentroidY    float64 `json:"centroid_y" bson:"centroid_y"`
	SummaryShort string  `json:"summary_short" bson:"summary_short"`
	SummaryLong  string  `json:"summary_long" bson:"summary_long"`
	BlinkPhase   float64 `json:"-" bson:"-"`
}

// PhaseSource supplies uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type PhaseSource interface {
	Float64() float64
}

// SharedSource draws from the goroutine-safe global generator. Providers use
// it when no seeded source is configured.
var SharedSource PhaseSource = sharedSource{}

type sharedSource struct{}

func (sharedSource) Float64() float64 { return rand.Float64() }

// RandomPhase draws a flicker phase in [0, 2π).
func RandomPhase(src PhaseSource) float64 {
	return src.Float64() * 2 * math.Pi
}

// AssignPhases gives every point a fresh BlinkPhase.
// Providers that build points without going through [Decode] call this once.
func AssignPhases(points []Point, src PhaseSource) {
	for i := range points {
		points[i].BlinkPhase = RandomPhase(src)
	}
}

// BoundsOf returns the bounding box of the points' positions.
// It returns false when points is empty.
func BoundsOf(points []Point) (geom.Box, bool) {
	if len(points) == 0 {
		return geom.Box{}, false
	}
	b := geom.BoxAround(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		b = b.Extend(p.X, p.Y)
	}
	return b, true
}
