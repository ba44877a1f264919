package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/provider"
)

func pt(block, cluster int, summary string) blocks.Point {
	return blocks.Point{BlockNumber: block, ClusterID: cluster, SummaryShort: summary}
}

func TestSummarize(t *testing.T) {
	points := []blocks.Point{
		pt(7, 1, "Fees"), pt(7, 1, "Fees"),
		pt(7, 2, "Memes"), pt(7, 2, "Memes"), pt(7, 2, "Memes"),
		pt(7, 3, ""),
		pt(5, 9, "Art"),
	}

	rows, err := summarize(points)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if rows[0].Block != 5 || rows[0].Points != 1 || rows[0].Clusters != 1 || rows[0].Topics != "Art" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	// Largest cluster first; empty summaries are skipped.
	if rows[1].Block != 7 || rows[1].Points != 6 || rows[1].Clusters != 3 || rows[1].Topics != "Memes, Fees" {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestSummarizeTopicLimit(t *testing.T) {
	var points []blocks.Point
	for i, s := range []string{"a", "b", "c", "d", "e"} {
		points = append(points, pt(1, i, s))
	}
	rows, err := summarize(points)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(rows[0].Topics, ",") + 1; got != maxTopics {
		t.Errorf("got %d topics (%q), want %d", got, rows[0].Topics, maxTopics)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := summarize(nil); !errors.IsEmptyResult(err) {
		t.Errorf("err = %v, want EMPTY_RESULT", err)
	}
}

func TestSummarizeDemo(t *testing.T) {
	d := provider.NewDemo(demoSeed)
	var points []blocks.Point
	for n := 10; n <= 13; n++ {
		points = append(points, d.Block(n)...)
	}

	rows, err := summarize(points)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if want := 3 + r.Block%4; r.Clusters != want {
			t.Errorf("block %d: %d clusters, want %d", r.Block, r.Clusters, want)
		}
	}
}

func TestWriteBlockTable(t *testing.T) {
	var buf bytes.Buffer
	writeBlockTable(&buf, []blockRow{
		{Block: 1200, Points: 31, Clusters: 4, Topics: "Fees, Memes"},
		{Block: 1201, Points: 12, Clusters: 2, Topics: "Art"},
	})

	out := buf.String()
	for _, want := range []string{"Block", "Points", "Clusters", "Topics", "1200", "1201", "Fees, Memes"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
