package nodelink

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/cluster"
)

func testClusters() []*cluster.Cluster {
	points := []blocks.Point{
		{BlockNumber: 100, ClusterID: 1, X: 0, Y: 0, PostContent: "gm", PostLink: "https://x/p/1", SummaryShort: "greetings"},
		{BlockNumber: 100, ClusterID: 1, X: 1, Y: 0, PostContent: "gn"},
		{BlockNumber: 100, ClusterID: 2, X: 5, Y: 5, PostContent: "wagmi", SummaryShort: "memes"},
	}
	return cluster.Build(points, rand.New(rand.NewPCG(1, 1)))
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testClusters(), Options{Block: 100, Detailed: true})

	for _, want := range []string{
		"graph G {",
		`label="Block Height: 100"`,
		`subgraph "cluster_1" {`,
		`subgraph "cluster_2" {`,
		`label="greetings"`,
		`"c1_p0" [label="gm"`,
		`URL="https://x/p/1"`,
		`pos="1.000,0.000!"`,
		`"c1_p0" -- "c1_p1"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if n := strings.Count(dot, " -- "); n != 1 {
		t.Errorf("got %d edges, want 1", n)
	}
}

func TestNodeLabel(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		detailed bool
		want     string
	}{
		{"index only", "gm", false, "3"},
		{"detailed", "gm", true, "gm"},
		{"detailed empty", "", true, "3"},
		{"truncated", strings.Repeat("a", 50), true, strings.Repeat("a", 39) + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodeLabel(3, tt.content, tt.detailed); got != tt.want {
				t.Errorf("nodeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}
}
