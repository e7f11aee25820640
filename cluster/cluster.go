// Package cluster provides segmentation strategies over a segment.Collection.
//
// Every strategy shares the same contract: given a collection holding a
// complete partition and a distance metric resolved at construction, mutate
// the collection in place toward a converged partition. The collection stays
// structurally valid (complete and disjoint) at every intermediate step, so
// callers enforcing an external time budget can stop a run and still hold a
// usable partition.
package cluster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robertogiachetta/aegis-origin/segment"
)

// Segmenter mutates a segment collection toward a converged partition.
type Segmenter interface {
	// Segment runs the strategy to completion, mutating coll in place.
	Segment(ctx context.Context, coll *segment.Collection) error
}

// ErrInvalidOptions indicates malformed strategy options, rejected before
// any raster access.
type ErrInvalidOptions struct {
	Reason string
}

func (e *ErrInvalidOptions) Error() string {
	return fmt.Sprintf("invalid options: %s", e.Reason)
}

// noopLogger returns a logger that discards everything; strategies use it
// when no logger is configured.
func noopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// neighborPairs calls fn for every pair of horizontally or vertically
// adjacent cells, in row-major order. fn returning false stops the scan.
func neighborPairs(rows, cols int, fn func(rowA, colA, rowB, colB int) bool) {
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if col+1 < cols && !fn(row, col, row, col+1) {
				return
			}
			if row+1 < rows && !fn(row, col, row+1, col) {
				return
			}
		}
	}
}

// orderedIDs returns the pair (a, b) with the smaller ID first, for use as a
// dedupe key over unordered segment pairs.
func orderedIDs(a, b segment.ID) [2]segment.ID {
	if a > b {
		a, b = b, a
	}
	return [2]segment.ID{a, b}
}
