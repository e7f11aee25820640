package raster

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryInvalidExtent(t *testing.T) {
	tests := []struct {
		name              string
		rows, cols, bands int
	}{
		{"ZeroRows", 0, 2, 1},
		{"ZeroCols", 2, 0, 1},
		{"ZeroBands", 2, 2, 0},
		{"Negative", -1, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMemory(tt.rows, tt.cols, tt.bands, FormatFloat)
			var extent *ErrInvalidExtent
			assert.ErrorAs(t, err, &extent)
		})
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	m, err := NewMemory(2, 3, 2, FormatFloat)
	require.NoError(t, err)

	m.SetValue(1, 2, 1, 42.5)
	assert.Equal(t, 42.5, m.Value(1, 2, 1))
	assert.Equal(t, 0.0, m.Value(0, 0, 0))
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.Equal(t, 2, m.Bands())
	assert.Equal(t, FormatFloat, m.Format())
}

func TestMemoryIntegerFormat(t *testing.T) {
	m, err := NewMemory(1, 1, 1, FormatInteger)
	require.NoError(t, err)

	m.SetValue(0, 0, 0, 41.9)
	assert.Equal(t, 41.0, m.Value(0, 0, 0))
}

func TestNewMemoryFromValues(t *testing.T) {
	m, err := NewMemoryFromValues(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.Value(1, 0, 0))

	_, err = NewMemoryFromValues(2, 2, []float64{1, 2})
	assert.Error(t, err)
}

func TestVector(t *testing.T) {
	m, err := NewMemory(1, 1, 3, FormatFloat)
	require.NoError(t, err)
	m.SetValue(0, 0, 0, 1)
	m.SetValue(0, 0, 1, 2)
	m.SetValue(0, 0, 2, 3)

	vec := Vector(m, 0, 0, nil)
	assert.Equal(t, []float64{1, 2, 3}, vec)

	// Reuses the destination when it is large enough.
	dst := make([]float64, 3)
	got := Vector(m, 0, 0, dst)
	assert.Equal(t, &dst[0], &got[0])
}

func TestComputeBandStats(t *testing.T) {
	m, err := NewMemoryFromValues(2, 2, []float64{1, 1, 100, 100})
	require.NoError(t, err)

	stats, err := ComputeBandStats(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, stats.Mean, 1)

	assert.InDelta(t, 50.5, stats.Mean[0], 1e-9)
	// Sample standard deviation of {1, 1, 100, 100}.
	assert.InDelta(t, math.Sqrt(4*49.5*49.5/3), stats.StdDev[0], 1e-9)
}

func TestComputeBandStatsConstantBand(t *testing.T) {
	m, err := NewMemoryFromValues(2, 2, []float64{7, 7, 7, 7})
	require.NoError(t, err)

	stats, err := ComputeBandStats(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 7.0, stats.Mean[0])
	assert.Equal(t, 0.0, stats.StdDev[0])
}

func TestComputeBandStatsSingleCell(t *testing.T) {
	m, err := NewMemoryFromValues(1, 1, []float64{3})
	require.NoError(t, err)

	stats, err := ComputeBandStats(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 3.0, stats.Mean[0])
	assert.Equal(t, 0.0, stats.StdDev[0])
}

func TestComputeBandStatsCancelled(t *testing.T) {
	m, err := NewMemoryFromValues(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ComputeBandStats(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}
