// Package pkg holds the libraries behind blockscape, a visualizer for posts
// that have been embedded in two dimensions and grouped into clusters, one
// block at a time.
//
// # Architecture
//
// Data flows through the packages in one direction:
//
//	provider (HTTP API, MongoDB, SQLite snapshot, demo)
//	         ↓
//	    [blocks] index: records grouped by block, one current block
//	         ↓
//	    [cluster] graphs: centroids, summaries and skeleton edges
//	         ↓
//	    [render] composer + [viewport] transform → Frame
//	         ↓
//	    [render/sink]: PNG, SVG, JSON, terminal
//
// [panel] owns one of each stage on a single goroutine and is driven by the
// CLI explorer or, through [session] and [server], by HTTP clients. Pointer
// input goes through [gesture], which pans, pinches, zooms and hit-tests
// hover targets.
//
// # Quick Start
//
//	p := provider.NewDemo(42)
//	pn := panel.New(p, panel.WithCanvas(800, 600))
//	go pn.Run(ctx)
//
//	if err := pn.FetchWait(ctx, 100, 110); err != nil {
//	    return err
//	}
//	v, _ := pn.View()
//	png, err := sink.RenderPNG(v.Frame)
//
// # Supporting Packages
//
// [errors] carries the error codes shared by every layer. [cache] stores raw
// API responses on disk or in Redis. [config] resolves settings from defaults,
// a TOML or YAML file, the environment and flags. [observability] exposes
// hooks for fetches, frames, cache lookups and HTTP requests. [autoplay]
// steps through blocks on a timer. [httputil] retries transient failures.
//
// [autoplay]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/autoplay
// [blocks]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/blocks
// [cache]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/cache
// [cluster]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/cluster
// [config]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/errors
// [gesture]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/gesture
// [httputil]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/observability
// [panel]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/panel
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/render/sink
// [render]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/server
// [session]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/session
// [viewport]: https://pkg.go.dev/github.com/matzehuels/blockscape/pkg/viewport
package pkg
