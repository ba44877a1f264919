package blocks

import (
	"slices"

	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/geom"
)

// Index buckets points by block number and tracks the block currently shown.
//
// The zero value is an empty index with no current position. An Index is not
// safe for concurrent use; its owner serializes access.
type Index struct {
	byBlock  map[int][]Point
	numbers  []int
	position int
	bounds   geom.Box
	loaded   bool
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Load replaces the index contents with points.
//
// Points are bucketed by block number, preserving their input order within a
// block, and the distinct block numbers are sorted ascending. The position is
// reset to 0 and the global bounding box recomputed. An empty input fails with
// EMPTY_RESULT and leaves the index untouched.
func (x *Index) Load(points []Point) error {
	if len(points) == 0 {
		return errors.New(errors.ErrCodeEmptyResult, "no points in the requested range")
	}

	byBlock := make(map[int][]Point)
	for _, p := range points {
		byBlock[p.BlockNumber] = append(byBlock[p.BlockNumber], p)
	}
	numbers := make([]int, 0, len(byBlock))
	for n := range byBlock {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	bounds, _ := BoundsOf(points)

	x.byBlock = byBlock
	x.numbers = numbers
	x.position = 0
	x.bounds = bounds
	x.loaded = true
	return nil
}

// Reset empties the index and clears the current position.
func (x *Index) Reset() {
	*x = Index{}
}

// Loaded reports whether a dataset is present.
func (x *Index) Loaded() bool { return x.loaded }

// Len returns the number of distinct blocks.
func (x *Index) Len() int { return len(x.numbers) }

// BlockNumbers returns the ascending block numbers available for stepping.
func (x *Index) BlockNumbers() []int { return slices.Clone(x.numbers) }

// Bounds returns the bounding box of every loaded point.
func (x *Index) Bounds() (geom.Box, bool) { return x.bounds, x.loaded }

// Position returns the current position, or false before any load.
func (x *Index) Position() (int, bool) {
	if !x.loaded {
		return 0, false
	}
	return x.position, true
}

// Advance moves to the next block, wrapping to 0 past the last one.
// It returns the new position; before any load it returns 0 and does nothing.
func (x *Index) Advance() int {
	if !x.loaded {
		return 0
	}
	x.position = (x.position + 1) % len(x.numbers)
	return x.position
}

// Select sets the current position directly.
func (x *Index) Select(i int) error {
	if !x.loaded {
		return errors.New(errors.ErrCodeInvalidInput, "no blocks loaded")
	}
	if i < 0 || i >= len(x.numbers) {
		return errors.New(errors.ErrCodeInvalidInput, "position %d out of range [0, %d]", i, len(x.numbers)-1)
	}
	x.position = i
	return nil
}

// CurrentBlock returns the block number at the current position.
func (x *Index) CurrentBlock() (int, bool) {
	if !x.loaded {
		return 0, false
	}
	return x.numbers[x.position], true
}

// Current returns the points of the current block, or nil when unset.
// The returned slice is owned by the index and must not be modified.
func (x *Index) Current() []Point {
	n, ok := x.CurrentBlock()
	if !ok {
		return nil
	}
	return x.byBlock[n]
}

// Block returns the points of block n.
func (x *Index) Block(n int) ([]Point, bool) {
	pts, ok := x.byBlock[n]
	return pts, ok
}

// Count returns the total number of loaded points.
func (x *Index) Count() int {
	total := 0
	for _, pts := range x.byBlock {
		total += len(pts)
	}
	return total
}
