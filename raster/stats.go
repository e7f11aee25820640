package raster

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// BandStats holds the global per-band mean and standard deviation of a
// raster, as needed for cluster center initialization.
type BandStats struct {
	Mean   []float64
	StdDev []float64
}

// ComputeBandStats computes the mean and standard deviation of every band
// over all cells. Bands are processed concurrently; the raster is only read.
//
// A band with identical values everywhere (or a single cell) reports a
// standard deviation of exactly zero.
func ComputeBandStats(ctx context.Context, r Raster) (*BandStats, error) {
	rows, cols, bands := r.Rows(), r.Cols(), r.Bands()

	s := &BandStats{
		Mean:   make([]float64, bands),
		StdDev: make([]float64, bands),
	}

	g, ctx := errgroup.WithContext(ctx)
	for b := 0; b < bands; b++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values := make([]float64, 0, rows*cols)
			for row := 0; row < rows; row++ {
				for col := 0; col < cols; col++ {
					values = append(values, r.Value(row, col, b))
				}
			}
			mean, sigma := stat.MeanStdDev(values, nil)
			if math.IsNaN(sigma) {
				// Single sample: no spread.
				sigma = 0
			}
			s.Mean[b] = mean
			s.StdDev[b] = sigma
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s, nil
}
