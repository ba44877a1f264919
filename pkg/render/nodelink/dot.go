package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/blockscape/pkg/cluster"
)

// Options configures DOT generation.
type Options struct {
	// Block is shown in the graph label when non-zero.
	Block int

	// Detailed puts each point's post content in its node label instead of
	// its index.
	Detailed bool

	// Scale multiplies embedding coordinates into Graphviz inches for the
	// pinned positions. Zero means 1.
	Scale float64
}

// ToDOT converts clusters to an undirected Graphviz graph.
func ToDOT(clusters []*cluster.Cluster, opts Options) string {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Block != 0 {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", fmt.Sprintf("Block Height: %d", opts.Block))
	}
	buf.WriteString("  node [shape=circle, style=filled, fontsize=10, width=0.3, fixedsize=false];\n")
	buf.WriteString("  edge [penwidth=1.2];\n")

	for _, c := range clusters {
		color := colorful.Hsl(float64(c.Hue), 0.85, 0.6).Clamped().Hex()
		fmt.Fprintf(&buf, "\n  subgraph \"cluster_%d\" {\n", c.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", c.ShortSummary)
		fmt.Fprintf(&buf, "    color=%q;\n", color)

		for i, p := range c.Points {
			attrs := []string{
				fmt.Sprintf("label=%q", nodeLabel(i, p.PostContent, opts.Detailed)),
				fmt.Sprintf("fillcolor=%q", color),
				fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(p.X*scale), fmtFloat(p.Y*scale)),
			}
			if p.PostLink != "" {
				attrs = append(attrs, fmt.Sprintf("URL=%q", p.PostLink))
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", nodeID(c.ID, i), strings.Join(attrs, ", "))
		}
		for _, e := range c.Edges {
			fmt.Fprintf(&buf, "    %q -- %q [color=%q];\n", nodeID(c.ID, e.From), nodeID(c.ID, e.To), color)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(clusterID, i int) string {
	return fmt.Sprintf("c%d_p%d", clusterID, i)
}

func nodeLabel(i int, content string, detailed bool) string {
	if !detailed || content == "" {
		return strconv.Itoa(i)
	}
	const maxLen = 40
	if r := []rune(content); len(r) > maxLen {
		return string(r[:maxLen-1]) + "…"
	}
	return content
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the drawing scales to its
// container instead of carrying Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
