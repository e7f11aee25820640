package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertogiachetta/aegis-origin/distance"
	"github.com/robertogiachetta/aegis-origin/raster"
	"github.com/robertogiachetta/aegis-origin/segment"
	"github.com/robertogiachetta/aegis-origin/testutil"
)

func newCollection(t *testing.T, rows, cols int, values []float64) *segment.Collection {
	t.Helper()
	r, err := raster.NewMemoryFromValues(rows, cols, values)
	require.NoError(t, err)
	return segment.NewCollection(r)
}

func checkComplete(t *testing.T, coll *segment.Collection) {
	t.Helper()
	total := 0
	for _, s := range coll.Segments() {
		total += s.Count()
	}
	assert.Equal(t, coll.Rows()*coll.Cols(), total)
}

func TestNewISODATAValidation(t *testing.T) {
	tests := []struct {
		name string
		fn   func(o *ISODATAOptions)
	}{
		{"NegativeCenterCount", func(o *ISODATAOptions) { o.ClusterCenterCount = -1 }},
		{"NegativeDistanceThreshold", func(o *ISODATAOptions) { o.ClusterDistanceThreshold = -0.1 }},
		{"NegativeSizeThreshold", func(o *ISODATAOptions) { o.ClusterSizeThreshold = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewISODATA(tt.fn)
			var invalid *ErrInvalidOptions
			assert.ErrorAs(t, err, &invalid)
		})
	}

	t.Run("UnknownMetric", func(t *testing.T) {
		_, err := NewISODATA(func(o *ISODATAOptions) { o.SpectralDistance = distance.Kind(99) })
		assert.Error(t, err)
	})
}

func TestWorkingCenterCount(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		rows, cols int
		expected   int
	}{
		// Below the floor on a 4-cell raster: recomputed and capped at
		// the cell count.
		{"AutoSizedSmallRaster", 3, 2, 2, 4},
		{"AutoSizedLargeRaster", 0, 100, 100, 100},
		{"AutoSizedFloor", 5, 5, 5, 10}, // sqrt(25)=5, floored to 10
		{"ConfiguredAtFloor", 10, 2, 2, 10},
		{"ConfiguredAboveFloor", 15, 2, 2, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, workingCenterCount(tt.configured, tt.rows, tt.cols))
		})
	}
}

func TestCreateCenters(t *testing.T) {
	i, err := NewISODATA(func(o *ISODATAOptions) { o.Seed = 42 })
	require.NoError(t, err)

	stats := &raster.BandStats{Mean: []float64{50, 7}, StdDev: []float64{10, 0}}
	centers := i.createCenters(stats, 5)

	require.Len(t, centers, 5)
	for _, c := range centers {
		require.Len(t, c, 2)
		// Zero deviation pins the component to the global mean.
		assert.Equal(t, 7.0, c[1])
	}

	// Same seed, same centers.
	j, err := NewISODATA(func(o *ISODATAOptions) { o.Seed = 42 })
	require.NoError(t, err)
	assert.Equal(t, centers, j.createCenters(stats, 5))
}

func TestAssignCells(t *testing.T) {
	// Two spectral clusters split along the value gap.
	coll := newCollection(t, 2, 2, []float64{1, 1, 100, 100})

	i, err := NewISODATA(func(o *ISODATAOptions) { o.ClusterDistanceThreshold = 50 })
	require.NoError(t, err)

	centers := [][]float64{{1}, {100}}
	require.NoError(t, i.assign(context.Background(), coll, centers))

	assert.Equal(t, 2, coll.Count())
	for _, s := range coll.Segments() {
		assert.Equal(t, 2, s.Count())
	}

	low, _ := coll.Get(0, 0)
	high, _ := coll.Get(1, 0)
	assert.InDelta(t, 1, low.Mean(0), 1e-9)
	assert.InDelta(t, 100, high.Mean(0), 1e-9)
	checkComplete(t, coll)
}

func TestAssignSegments(t *testing.T) {
	coll := newCollection(t, 2, 2, []float64{1, 1, 100, 100})

	// Supply a coarser partition so assignment runs at segment level.
	a, _ := coll.Get(0, 0)
	require.NoError(t, coll.MergeCell(a, 0, 1))
	require.Less(t, coll.Count(), 4)

	i, err := NewISODATA()
	require.NoError(t, err)

	centers := [][]float64{{1}, {100}}
	require.NoError(t, i.assign(context.Background(), coll, centers))

	assert.Equal(t, 2, coll.Count())
	low, _ := coll.Get(0, 1)
	assert.Equal(t, 2, low.Count())
	checkComplete(t, coll)
}

func TestAssignTieBreaksToFirstCenter(t *testing.T) {
	coll := newCollection(t, 1, 2, []float64{5, 4})

	i, err := NewISODATA()
	require.NoError(t, err)

	// Cell (0,0) is equidistant from both centers and must go to the
	// first; cell (0,1) unambiguously belongs to the first. A last-wins
	// tie-break would leave two segments here.
	centers := [][]float64{{4}, {6}}
	require.NoError(t, i.assign(context.Background(), coll, centers))

	assert.Equal(t, 1, coll.Count())
	s, _ := coll.Get(0, 0)
	assert.Equal(t, 2, s.Count())
}

func TestEliminateSplitsUndersizedClusters(t *testing.T) {
	coll := newCollection(t, 2, 2, []float64{1, 1, 1, 100})

	// Build a 3-cell cluster, below the size threshold of 5.
	a, _ := coll.Get(0, 0)
	require.NoError(t, coll.MergeCell(a, 0, 1))
	require.NoError(t, coll.MergeCell(a, 1, 0))
	require.Equal(t, 2, coll.Count())

	i, err := NewISODATA(func(o *ISODATAOptions) { o.ClusterSizeThreshold = 5 })
	require.NoError(t, err)

	require.NoError(t, i.eliminate(coll))

	// Every cluster was undersized: back to single-cell segments.
	assert.Equal(t, 4, coll.Count())
	for _, s := range coll.Segments() {
		assert.Equal(t, 1, s.Count())
	}
	checkComplete(t, coll)
}

func TestEliminateKeepsLargeClusters(t *testing.T) {
	coll := newCollection(t, 2, 2, []float64{1, 1, 1, 100})

	a, _ := coll.Get(0, 0)
	require.NoError(t, coll.MergeCell(a, 0, 1))
	require.NoError(t, coll.MergeCell(a, 1, 0))

	i, err := NewISODATA(func(o *ISODATAOptions) { o.ClusterSizeThreshold = 2 })
	require.NoError(t, err)

	require.NoError(t, i.eliminate(coll))

	// The 3-cell cluster survives; the single cell is split in place.
	assert.Equal(t, 2, coll.Count())
	assert.True(t, coll.Contains(a))
	assert.Equal(t, 3, a.Count())
}

func TestMergeClustersThresholdBoundary(t *testing.T) {
	t.Run("AtBoundaryDoesNotMerge", func(t *testing.T) {
		coll := newCollection(t, 1, 2, []float64{1, 3})

		i, err := NewISODATA(func(o *ISODATAOptions) { o.ClusterDistanceThreshold = 2 })
		require.NoError(t, err)

		rounds, err := i.mergeClusters(context.Background(), coll)
		require.NoError(t, err)
		assert.Equal(t, 1, rounds)
		assert.Equal(t, 2, coll.Count())
	})

	t.Run("BelowBoundaryMerges", func(t *testing.T) {
		coll := newCollection(t, 1, 2, []float64{1, 3})

		i, err := NewISODATA(func(o *ISODATAOptions) { o.ClusterDistanceThreshold = 2.001 })
		require.NoError(t, err)

		_, err = i.mergeClusters(context.Background(), coll)
		require.NoError(t, err)
		assert.Equal(t, 1, coll.Count())
	})
}

func TestMergeClustersMonotonic(t *testing.T) {
	rng := testutil.NewRNG(7)
	r := testutil.RandomRaster(rng, 6, 6, 1, 100)
	coll := segment.NewCollection(r)

	i, err := NewISODATA(func(o *ISODATAOptions) { o.ClusterDistanceThreshold = 20 })
	require.NoError(t, err)

	before := coll.Count()
	_, err = i.mergeClusters(context.Background(), coll)
	require.NoError(t, err)

	assert.LessOrEqual(t, coll.Count(), before)
	assert.GreaterOrEqual(t, coll.Count(), 1)
	checkComplete(t, coll)
}

func TestISODATAEndToEnd(t *testing.T) {
	r, err := raster.NewMemoryFromValues(2, 2, []float64{1, 1, 100, 100})
	require.NoError(t, err)
	coll := segment.NewCollection(r)

	i, err := NewISODATA(func(o *ISODATAOptions) {
		o.ClusterDistanceThreshold = 50
		o.Seed = 42
	})
	require.NoError(t, err)

	require.NoError(t, i.Segment(context.Background(), coll))

	// Cells with identical spectra always land in the same segment.
	a, _ := coll.Get(0, 0)
	b, _ := coll.Get(0, 1)
	assert.Same(t, a, b)
	c, _ := coll.Get(1, 0)
	d, _ := coll.Get(1, 1)
	assert.Same(t, c, d)

	// The two value levels are 99 apart, far above the merge threshold,
	// so they can only share a segment if assignment already joined them.
	assert.LessOrEqual(t, coll.Count(), 2)
	checkComplete(t, coll)
}

func TestISODATAReproducibleWithSeed(t *testing.T) {
	run := func() []uint32 {
		r, err := raster.NewMemoryFromValues(3, 3, []float64{1, 2, 1, 50, 51, 50, 99, 98, 99})
		require.NoError(t, err)
		coll := segment.NewCollection(r)

		i, err := NewISODATA(func(o *ISODATAOptions) {
			o.ClusterDistanceThreshold = 10
			o.Seed = 1234
		})
		require.NoError(t, err)
		require.NoError(t, i.Segment(context.Background(), coll))

		labels := make([]uint32, 0, 9)
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				s, err := coll.Get(row, col)
				require.NoError(t, err)
				labels = append(labels, uint32(s.ID()))
			}
		}
		return labels
	}

	assert.Equal(t, run(), run())
}

func TestISODATACancellation(t *testing.T) {
	coll := newCollection(t, 2, 2, []float64{1, 1, 100, 100})

	i, err := NewISODATA(func(o *ISODATAOptions) { o.Seed = 1 })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, i.Segment(ctx, coll), context.Canceled)
}
