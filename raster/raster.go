// Package raster defines the accessor contract for multi-band raster data
// consumed by the segmentation pipeline, plus an in-memory reference
// implementation used in tests and examples.
//
// The pipeline only ever reads rasters through the Raster interface; format
// codecs, coordinate reference systems and file I/O live outside this module.
package raster

import "fmt"

// Format describes the numeric domain of a raster's samples.
// It is fixed for the whole raster at construction time.
type Format int

const (
	// FormatFloat marks floating-point sample values.
	FormatFloat Format = iota
	// FormatInteger marks integer sample values. Values are still surfaced
	// as float64 through the accessor; integer rasters simply guarantee
	// whole-number samples.
	FormatInteger
)

func (f Format) String() string {
	switch f {
	case FormatFloat:
		return "Float"
	case FormatInteger:
		return "Integer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// Raster is the read-only accessor for a multi-band grid of samples.
//
// Implementations must report extents of at least 1 in every dimension.
// Value is only defined for coordinates within the reported extents;
// bounds checking is the caller's responsibility.
type Raster interface {
	// Rows returns the number of rows.
	Rows() int
	// Cols returns the number of columns.
	Cols() int
	// Bands returns the number of spectral bands.
	Bands() int
	// Format returns the numeric domain of the samples.
	Format() Format
	// Value returns the sample of the given band at (row, col).
	Value(row, col, band int) float64
}

// Vector reads the full spectral vector of the cell at (row, col) into dst.
// If dst is too small a new slice is allocated.
func Vector(r Raster, row, col int, dst []float64) []float64 {
	bands := r.Bands()
	if cap(dst) < bands {
		dst = make([]float64, bands)
	}
	dst = dst[:bands]
	for b := 0; b < bands; b++ {
		dst[b] = r.Value(row, col, b)
	}
	return dst
}

// ErrInvalidExtent indicates non-positive raster dimensions.
type ErrInvalidExtent struct {
	Rows, Cols, Bands int
}

func (e *ErrInvalidExtent) Error() string {
	return fmt.Sprintf("invalid raster extent: %dx%d cells, %d bands", e.Rows, e.Cols, e.Bands)
}

// Memory is an in-memory Raster backed by a single band-interleaved slice.
type Memory struct {
	rows, cols, bands int
	format            Format
	data              []float64
}

// NewMemory creates an all-zero in-memory raster with the given extents.
func NewMemory(rows, cols, bands int, format Format) (*Memory, error) {
	if rows < 1 || cols < 1 || bands < 1 {
		return nil, &ErrInvalidExtent{Rows: rows, Cols: cols, Bands: bands}
	}
	return &Memory{
		rows:   rows,
		cols:   cols,
		bands:  bands,
		format: format,
		data:   make([]float64, rows*cols*bands),
	}, nil
}

// NewMemoryFromValues creates a single-band in-memory raster from row-major
// values. Handy for tests and small examples.
func NewMemoryFromValues(rows, cols int, values []float64) (*Memory, error) {
	m, err := NewMemory(rows, cols, 1, FormatFloat)
	if err != nil {
		return nil, err
	}
	if len(values) != rows*cols {
		return nil, &ErrInvalidExtent{Rows: rows, Cols: cols, Bands: 1}
	}
	copy(m.data, values)
	return m, nil
}

// Rows returns the number of rows.
func (m *Memory) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Memory) Cols() int { return m.cols }

// Bands returns the number of spectral bands.
func (m *Memory) Bands() int { return m.bands }

// Format returns the numeric domain of the samples.
func (m *Memory) Format() Format { return m.format }

// Value returns the sample of the given band at (row, col).
func (m *Memory) Value(row, col, band int) float64 {
	return m.data[(row*m.cols+col)*m.bands+band]
}

// SetValue stores a sample. Integer rasters truncate toward zero.
func (m *Memory) SetValue(row, col, band int, v float64) {
	if m.format == FormatInteger {
		v = float64(int64(v))
	}
	m.data[(row*m.cols+col)*m.bands+band] = v
}
