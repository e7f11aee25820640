package cluster

import (
	"context"
	"log/slog"
	"math"

	"github.com/robertogiachetta/aegis-origin/distance"
	"github.com/robertogiachetta/aegis-origin/segment"
)

// BestMergeOptions configures the best-merge strategy.
type BestMergeOptions struct {
	// MergeThreshold bounds the merge cost; only pairs strictly below it
	// are eligible.
	MergeThreshold float64

	// MaxIterations caps the number of merges. Zero means unbounded:
	// the strategy runs until no admissible merge remains.
	MaxIterations int

	// Metric selects the aggregate distance used as the merge cost.
	Metric distance.Kind

	// Logger receives progress at debug level.
	Logger *slog.Logger
}

// DefaultBestMergeOptions are the options used when none are overridden.
var DefaultBestMergeOptions = BestMergeOptions{
	MergeThreshold: 1,
	MaxIterations:  0,
	Metric:         distance.Euclidean,
}

// BestMerge repeatedly finds the globally best-scoring pair of spatially
// adjacent segments and merges it, until no pair scores below the threshold
// or the iteration cap is reached.
type BestMerge struct {
	opts BestMergeOptions
	fn   distance.Func
}

// NewBestMerge creates a best-merge strategy.
func NewBestMerge(optFns ...func(o *BestMergeOptions)) (*BestMerge, error) {
	opts := DefaultBestMergeOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MergeThreshold < 0 {
		return nil, &ErrInvalidOptions{Reason: "merge threshold must not be negative"}
	}
	if opts.MaxIterations < 0 {
		return nil, &ErrInvalidOptions{Reason: "max iterations must not be negative"}
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger()
	}

	fn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	return &BestMerge{opts: opts, fn: fn}, nil
}

// Segment runs best-merge to convergence.
func (m *BestMerge) Segment(ctx context.Context, coll *segment.Collection) error {
	merges := 0
	for {
		if m.opts.MaxIterations > 0 && merges >= m.opts.MaxIterations {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		a, b, cost, err := m.bestPair(coll)
		if err != nil {
			return err
		}
		if a == nil || cost >= m.opts.MergeThreshold {
			break
		}
		if err := coll.Merge(a, b); err != nil {
			return err
		}
		merges++
	}

	m.opts.Logger.Debug("best-merge converged", "merges", merges, "segments", coll.Count())
	return nil
}

// bestPair scans all adjacent segment pairs and returns the one with the
// minimal aggregate distance.
func (m *BestMerge) bestPair(coll *segment.Collection) (*segment.Segment, *segment.Segment, float64, error) {
	var bestA, bestB *segment.Segment
	bestCost := math.Inf(1)
	var bufA, bufB []float64
	seen := make(map[[2]segment.ID]struct{})
	var scanErr error

	neighborPairs(coll.Rows(), coll.Cols(), func(rowA, colA, rowB, colB int) bool {
		a, err := coll.Get(rowA, colA)
		if err != nil {
			scanErr = err
			return false
		}
		b, err := coll.Get(rowB, colB)
		if err != nil {
			scanErr = err
			return false
		}
		if a == b {
			return true
		}
		key := orderedIDs(a.ID(), b.ID())
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}

		bufA = a.MeanVector(bufA)
		bufB = b.MeanVector(bufB)
		cost, err := m.fn(bufA, bufB)
		if err != nil {
			scanErr = err
			return false
		}
		if cost < bestCost {
			bestCost = cost
			bestA, bestB = a, b
		}
		return true
	})
	if scanErr != nil {
		return nil, nil, 0, scanErr
	}

	return bestA, bestB, bestCost, nil
}
