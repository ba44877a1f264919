// Package provider fetches block ranges of point records.
//
// # Sources
//
//   - [HTTPClient]: the remote data API, GET {base}?start=S&end=E
//   - [MongoProvider]: a MongoDB collection of point documents
//   - [Store]: a local SQLite snapshot written by "blockscape fetch --save"
//   - [Demo]: deterministic synthetic clusters for offline use
//
// Every source validates the range with [errors.ValidateBlockRange] before
// doing any I/O, so an invalid range never reaches the network or disk. An
// empty range returns an empty slice; the caller decides whether that is an
// error (see [blocks.Index.Load]).
package provider

import (
	"context"
	"time"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/observability"
)

// Provider returns the points of blocks start through end inclusive, in the
// order the source reports them.
type Provider interface {
	Fetch(ctx context.Context, start, end int) ([]blocks.Point, error)

	// Name identifies the source in logs and cache keys.
	Name() string
}

// Func adapts a plain function to [Provider].
type Func func(ctx context.Context, start, end int) ([]blocks.Point, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, start, end int) ([]blocks.Point, error) {
	return f(ctx, start, end)
}

// Name returns "func".
func (Func) Name() string { return "func" }

// instrument wraps one fetch with the observability fetch hooks.
func instrument(ctx context.Context, source string, start, end int, fetch func() ([]blocks.Point, error)) ([]blocks.Point, error) {
	hooks := observability.Fetch()
	hooks.OnFetchStart(ctx, source, start, end)
	began := time.Now()
	points, err := fetch()
	hooks.OnFetchComplete(ctx, source, start, end, len(points), time.Since(began), err)
	return points, err
}
