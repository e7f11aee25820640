// Package segment implements the mutable partition of a raster's cells into
// segments, together with the merge and split primitives that segmentation
// algorithms are built on.
//
// A Collection always holds a complete, disjoint partition: every cell maps
// to exactly one live segment at all times, across any sequence of merges
// and splits. Segments are arena entries addressed by stable IDs; merging
// retires the absorbed entry instead of mutating shared object identity.
package segment

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// ID is the stable arena index of a segment within its Collection.
type ID uint32

// Segment is one element of the partition: a set of cells with per-band
// aggregate statistics. Segments are created and mutated only by their
// owning Collection.
type Segment struct {
	id     ID
	count  int
	sums   []float64
	sqSums []float64
	cells  *roaring.Bitmap // flattened cell indexes (row*cols + col)
	alive  bool
}

// ID returns the segment's stable identifier.
func (s *Segment) ID() ID { return s.id }

// Count returns the number of member cells.
func (s *Segment) Count() int { return s.count }

// Bands returns the number of spectral bands tracked by the aggregates.
func (s *Segment) Bands() int { return len(s.sums) }

// Sum returns the sum of the given band over all member cells.
func (s *Segment) Sum(band int) float64 { return s.sums[band] }

// SumSquares returns the sum of squares of the given band over all member
// cells. Kept alongside Sum so variances survive merges exactly.
func (s *Segment) SumSquares(band int) float64 { return s.sqSums[band] }

// Mean returns the mean of the given band over all member cells.
func (s *Segment) Mean(band int) float64 {
	return s.sums[band] / float64(s.count)
}

// Variance returns the population variance of the given band.
func (s *Segment) Variance(band int) float64 {
	n := float64(s.count)
	mean := s.sums[band] / n
	v := s.sqSums[band]/n - mean*mean
	if v < 0 {
		// Rounding can push a constant band slightly negative.
		return 0
	}
	return v
}

// StdDev returns the population standard deviation of the given band.
func (s *Segment) StdDev(band int) float64 {
	return math.Sqrt(s.Variance(band))
}

// MeanVector writes the per-band mean into dst and returns it, allocating
// when dst is too small. Implements distance.Aggregate.
func (s *Segment) MeanVector(dst []float64) []float64 {
	bands := len(s.sums)
	if cap(dst) < bands {
		dst = make([]float64, bands)
	}
	dst = dst[:bands]
	n := float64(s.count)
	for b := range s.sums {
		dst[b] = s.sums[b] / n
	}
	return dst
}

// Cells calls fn for every member cell until fn returns false.
func (s *Segment) Cells(cols int, fn func(row, col int) bool) {
	it := s.cells.Iterator()
	for it.HasNext() {
		idx := int(it.Next())
		if !fn(idx/cols, idx%cols) {
			return
		}
	}
}

func (s *Segment) String() string {
	return fmt.Sprintf("Segment(%d: %d cells)", s.id, s.count)
}
