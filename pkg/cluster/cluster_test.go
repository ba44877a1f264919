package cluster

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/blockscape/pkg/blocks"
)

func rng() *rand.Rand { return rand.New(rand.NewPCG(42, 0)) }

func randomPoints(r *rand.Rand, n int) []*blocks.Point {
	pts := make([]*blocks.Point, n)
	for i := range pts {
		pts[i] = &blocks.Point{X: r.Float64() * 100, Y: r.Float64() * 100}
	}
	return pts
}

func TestBuildEdgesSpans(t *testing.T) {
	r := rng()
	for _, n := range []int{1, 2, 3, 10, 57} {
		pts := randomPoints(r, n)
		edges := BuildEdges(pts, r)

		if len(edges) != n-1 {
			t.Fatalf("n=%d: got %d edges, want %d", n, len(edges), n-1)
		}

		// Every edge must start inside the frontier and add a new point.
		reached := map[int]bool{0: true}
		for i, e := range edges {
			if !reached[e.From] {
				t.Fatalf("n=%d: edge %d starts at %d outside the frontier", n, i, e.From)
			}
			if reached[e.To] {
				t.Fatalf("n=%d: edge %d reaches %d twice", n, i, e.To)
			}
			reached[e.To] = true
		}
		if len(reached) != n {
			t.Errorf("n=%d: skeleton touches %d points", n, len(reached))
		}
	}
}

func TestBuildEdgesGreedy(t *testing.T) {
	// 0 at the origin, 1 far right, 2 close to 1, 3 close to 0.
	pts := []*blocks.Point{{X: 0}, {X: 10}, {X: 11}, {X: 1}}
	edges := BuildEdges(pts, rng())

	want := []Edge{{From: 0, To: 3}, {From: 3, To: 1}, {From: 1, To: 2}}
	for i, e := range edges {
		if e.From != want[i].From || e.To != want[i].To {
			t.Errorf("edge %d = %d->%d, want %d->%d", i, e.From, e.To, want[i].From, want[i].To)
		}
	}
}

func TestBuildEdgesSinglePoint(t *testing.T) {
	if edges := BuildEdges([]*blocks.Point{{X: 1, Y: 1}}, rng()); len(edges) != 0 {
		t.Errorf("single point gave %d edges", len(edges))
	}
	if edges := BuildEdges(nil, rng()); len(edges) != 0 {
		t.Errorf("no points gave %d edges", len(edges))
	}
}

func TestHue(t *testing.T) {
	tests := []struct {
		id   int
		want int
	}{
		{0, 0},
		{1, 50},
		{7, 350},
		{8, 40},
		{36, 0},
		{-1, 310},
	}
	for _, tt := range tests {
		if got := Hue(tt.id); got != tt.want {
			t.Errorf("Hue(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}

	for id := -100; id < 100; id++ {
		h := Hue(id)
		if h != Hue(id) {
			t.Fatalf("Hue(%d) not deterministic", id)
		}
		if h < 0 || h >= 360 {
			t.Fatalf("Hue(%d) = %d outside [0, 360)", id, h)
		}
		for k := -3; k <= 3; k++ {
			if Hue(id+k*36) != h {
				t.Fatalf("Hue(%d) != Hue(%d)", id, id+k*36)
			}
		}
	}
}

func TestBuild(t *testing.T) {
	points := []blocks.Point{
		{BlockNumber: 5, ClusterID: 2, X: 0, Y: 0, SummaryShort: "two", SummaryLong: "cluster two", CentroidX: 1, CentroidY: 1},
		{BlockNumber: 5, ClusterID: 9, X: 3, Y: 3, SummaryShort: "nine"},
		{BlockNumber: 5, ClusterID: 2, X: 2, Y: 2},
		{BlockNumber: 5, ClusterID: 2, X: 5, Y: 0},
	}

	clusters := Build(points, rng())
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}

	c := clusters[0]
	if c.ID != 2 || c.Block != 5 || c.Hue != 100 {
		t.Errorf("first cluster = id %d block %d hue %d", c.ID, c.Block, c.Hue)
	}
	if c.ShortSummary != "two" || c.LongSummary != "cluster two" || c.CentroidX != 1 {
		t.Errorf("cluster summary not taken from its first point: %+v", c)
	}
	if len(c.Points) != 3 || len(c.Edges) != 2 {
		t.Errorf("cluster 2 has %d points and %d edges", len(c.Points), len(c.Edges))
	}
	if c.Points[1] != &points[2] {
		t.Error("cluster points must reference the input records")
	}

	if clusters[1].ID != 9 || len(clusters[1].Edges) != 0 {
		t.Errorf("second cluster = %+v", clusters[1])
	}
}
