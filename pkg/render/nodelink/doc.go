// Package nodelink exports a block's cluster skeletons as Graphviz graphs.
//
// # Overview
//
// Each cluster becomes a Graphviz subgraph whose nodes are the cluster's
// points and whose undirected edges are the skeleton built by
// [cluster.BuildEdges]. Nodes are pinned at their embedding coordinates, so
// neato-style engines reproduce the scatter layout; dot ignores the pins and
// lays each skeleton out as a tree.
//
// # Usage
//
//	dot := nodelink.ToDOT(clusters, nodelink.Options{Block: 100})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
