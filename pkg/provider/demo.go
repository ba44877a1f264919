package provider

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/errors"
)

var demoTopics = []struct{ short, long string }{
	{"Fees", "Complaints and jokes about transaction fees during congestion."},
	{"Governance", "Debate over the latest protocol upgrade proposal and who gets to vote on it."},
	{"Memes", "Image macros and running jokes that spread through the community."},
	{"Markets", "Price talk, charts and predictions for the coming week."},
	{"Dev tooling", "Posts about SDK releases, node clients and debugging tips."},
	{"Security", "Warnings about phishing links and a recently patched wallet bug."},
	{"Art", "Generative art drops and discussion of on-chain media."},
	{"Meetups", "Announcements for local meetups and conference side events."},
}

// Demo generates synthetic clusters. The same block number always yields the
// same records, so the output is stable across runs and processes.
type Demo struct {
	Seed uint64
	src  blocks.PhaseSource
}

// NewDemo returns a demo provider.
func NewDemo(seed uint64) *Demo {
	return &Demo{Seed: seed, src: blocks.SharedSource}
}

// Name returns "demo".
func (*Demo) Name() string { return "demo" }

// Fetch generates blocks start..end.
func (d *Demo) Fetch(ctx context.Context, start, end int) ([]blocks.Point, error) {
	if err := errors.ValidateBlockRange(start, end); err != nil {
		return nil, err
	}
	return instrument(ctx, "demo", start, end, func() ([]blocks.Point, error) {
		var points []blocks.Point
		for b := start; b <= end; b++ {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeNetwork, err, "generate block %d", b)
			}
			points = append(points, d.Block(b)...)
		}
		blocks.AssignPhases(points, d.src)
		return points, nil
	})
}

// Block generates the records of one block. BlinkPhase is left zero.
func (d *Demo) Block(n int) []blocks.Point {
	r := rand.New(rand.NewPCG(d.Seed, uint64(n)))
	clusters := 3 + n%4

	var points []blocks.Point
	for c := range clusters {
		topic := demoTopics[(n+c)%len(demoTopics)]
		angle := 2 * math.Pi * float64(c) / float64(clusters)
		cx := 50 + 30*math.Cos(angle) + r.NormFloat64()*3
		cy := 50 + 30*math.Sin(angle) + r.NormFloat64()*3
		id := (n*7 + c) % 36

		size := 4 + r.IntN(9)
		for i := range size {
			points = append(points, blocks.Point{
				BlockNumber:  n,
				PostLink:     fmt.Sprintf("https://example.org/posts/%d/%d/%d", n, id, i),
				PostContent:  fmt.Sprintf("%s post #%d from block %d", topic.short, i+1, n),
				X:            cx + r.NormFloat64()*6,
				Y:            cy + r.NormFloat64()*6,
				ClusterID:    id,
				CentroidX:    cx,
				CentroidY:    cy,
				SummaryShort: topic.short,
				SummaryLong:  topic.long,
			})
		}
	}
	return points
}
