package cluster

import (
	"context"
	"log/slog"
	"math"

	"github.com/robertogiachetta/aegis-origin/segment"
)

// SequentialCouplingOptions configures the sequential coupling strategy.
type SequentialCouplingOptions struct {
	// HomogeneityThreshold is the maximum mean per-band standard
	// deviation a segment may have to count as homogeneous.
	HomogeneityThreshold float64

	// Logger receives progress at debug level.
	Logger *slog.Logger
}

// DefaultSequentialCouplingOptions are the options used when none are
// overridden.
var DefaultSequentialCouplingOptions = SequentialCouplingOptions{
	HomogeneityThreshold: 1,
}

// SequentialCoupling scans cells in row-major order, coupling each cell's
// segment to an upper or left neighbor when a variance-based homogeneity
// test passes both before and after the hypothetical merge.
type SequentialCoupling struct {
	opts SequentialCouplingOptions
}

// NewSequentialCoupling creates a sequential coupling strategy.
func NewSequentialCoupling(optFns ...func(o *SequentialCouplingOptions)) (*SequentialCoupling, error) {
	opts := DefaultSequentialCouplingOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HomogeneityThreshold < 0 {
		return nil, &ErrInvalidOptions{Reason: "homogeneity threshold must not be negative"}
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger()
	}

	return &SequentialCoupling{opts: opts}, nil
}

// Segment runs a single row-major coupling pass over the collection.
func (s *SequentialCoupling) Segment(ctx context.Context, coll *segment.Collection) error {
	merges := 0
	for row := 0; row < coll.Rows(); row++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for col := 0; col < coll.Cols(); col++ {
			cur, err := coll.Get(row, col)
			if err != nil {
				return err
			}

			for _, nb := range [][2]int{{row - 1, col}, {row, col - 1}} {
				if nb[0] < 0 || nb[1] < 0 {
					continue
				}
				neighbor, err := coll.Get(nb[0], nb[1])
				if err != nil {
					return err
				}
				if neighbor == cur {
					continue
				}
				if !s.homogeneous(neighbor) || !s.homogeneousUnion(neighbor, cur) {
					continue
				}
				if err := coll.Merge(neighbor, cur); err != nil {
					return err
				}
				merges++
				break
			}
		}
	}

	s.opts.Logger.Debug("sequential coupling completed", "merges", merges, "segments", coll.Count())
	return nil
}

// homogeneous reports whether the segment's mean per-band standard
// deviation stays within the threshold.
func (s *SequentialCoupling) homogeneous(seg *segment.Segment) bool {
	var sum float64
	for b := 0; b < seg.Bands(); b++ {
		sum += seg.StdDev(b)
	}
	return sum/float64(seg.Bands()) <= s.opts.HomogeneityThreshold
}

// homogeneousUnion reports whether the hypothetical merge of a and b would
// still be homogeneous, computed from their combined aggregates without
// mutating either.
func (s *SequentialCoupling) homogeneousUnion(a, b *segment.Segment) bool {
	n := float64(a.Count() + b.Count())
	var sum float64
	for band := 0; band < a.Bands(); band++ {
		mean := (a.Sum(band) + b.Sum(band)) / n
		variance := (a.SumSquares(band)+b.SumSquares(band))/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		sum += math.Sqrt(variance)
	}
	return sum/float64(a.Bands()) <= s.opts.HomogeneityThreshold
}
