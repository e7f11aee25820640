package segment

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/robertogiachetta/aegis-origin/raster"
)

// ErrOutOfRange indicates cell coordinates outside the raster extents.
type ErrOutOfRange struct {
	Row, Col   int
	Rows, Cols int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("cell (%d, %d) out of range: raster is %dx%d", e.Row, e.Col, e.Rows, e.Cols)
}

// ErrInvalidSegment indicates an operation on a segment handle that is no
// longer live (already merged away or split).
type ErrInvalidSegment struct {
	ID ID
}

func (e *ErrInvalidSegment) Error() string {
	return fmt.Sprintf("segment %d is not live", e.ID)
}

// Collection owns the complete partition of a raster's cells into segments.
// It is the only component allowed to mutate membership.
//
// Collection is not safe for concurrent mutation; exactly one algorithm
// instance drives it at a time.
type Collection struct {
	r     raster.Raster
	rows  int
	cols  int
	bands int

	cellToSeg []ID       // index: row*cols + col
	arena     []*Segment // index: ID; retired entries stay, marked !alive
	live      int
}

// NewCollection builds the finest partition of the raster: one segment per
// cell, with aggregates initialized from the raster samples.
func NewCollection(r raster.Raster) *Collection {
	rows, cols, bands := r.Rows(), r.Cols(), r.Bands()
	c := &Collection{
		r:         r,
		rows:      rows,
		cols:      cols,
		bands:     bands,
		cellToSeg: make([]ID, rows*cols),
		arena:     make([]*Segment, 0, rows*cols),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c.cellToSeg[row*cols+col] = c.newCellSegment(row, col).id
		}
	}
	return c
}

// newCellSegment allocates a live single-cell segment in the arena.
func (c *Collection) newCellSegment(row, col int) *Segment {
	s := &Segment{
		id:     ID(len(c.arena)),
		count:  1,
		sums:   make([]float64, c.bands),
		sqSums: make([]float64, c.bands),
		cells:  roaring.New(),
		alive:  true,
	}
	for b := 0; b < c.bands; b++ {
		v := c.r.Value(row, col, b)
		s.sums[b] = v
		s.sqSums[b] = v * v
	}
	s.cells.Add(uint32(row*c.cols + col))
	c.arena = append(c.arena, s)
	c.live++
	return s
}

// Raster returns the raster this collection partitions.
func (c *Collection) Raster() raster.Raster { return c.r }

// Rows returns the number of raster rows.
func (c *Collection) Rows() int { return c.rows }

// Cols returns the number of raster columns.
func (c *Collection) Cols() int { return c.cols }

// Count returns the number of live segments.
func (c *Collection) Count() int { return c.live }

// Get returns the live segment currently owning the cell at (row, col).
func (c *Collection) Get(row, col int) (*Segment, error) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return nil, &ErrOutOfRange{Row: row, Col: col, Rows: c.rows, Cols: c.cols}
	}
	return c.arena[c.cellToSeg[row*c.cols+col]], nil
}

// Contains reports whether the given segment handle is still live in this
// collection. Callers holding handles across merges must re-check liveness
// before reuse.
func (c *Collection) Contains(s *Segment) bool {
	return s != nil && s.alive && int(s.id) < len(c.arena) && c.arena[s.id] == s
}

// Segments returns a snapshot of the currently live segments. The slice is
// safe to hold across mutations, but individual handles may be retired by
// intervening merges; validate with Contains before reuse.
func (c *Collection) Segments() []*Segment {
	out := make([]*Segment, 0, c.live)
	for _, s := range c.arena {
		if s.alive {
			out = append(out, s)
		}
	}
	return out
}

// Merge absorbs all of b's membership and statistics into a and retires b.
// Merging a segment with itself is a no-op.
func (c *Collection) Merge(a, b *Segment) error {
	if !c.Contains(a) {
		return &ErrInvalidSegment{ID: a.ID()}
	}
	if !c.Contains(b) {
		return &ErrInvalidSegment{ID: b.ID()}
	}
	if a == b {
		return nil
	}

	a.count += b.count
	for i := range a.sums {
		a.sums[i] += b.sums[i]
		a.sqSums[i] += b.sqSums[i]
	}

	it := b.cells.Iterator()
	for it.HasNext() {
		c.cellToSeg[it.Next()] = a.id
	}
	a.cells.Or(b.cells)

	c.retire(b)
	return nil
}

// MergeCell absorbs the cell at (row, col), together with whatever segment
// currently owns it, into target. No-op if target already owns the cell.
func (c *Collection) MergeCell(target *Segment, row, col int) error {
	if !c.Contains(target) {
		return &ErrInvalidSegment{ID: target.ID()}
	}
	owner, err := c.Get(row, col)
	if err != nil {
		return err
	}
	return c.Merge(target, owner)
}

// Split replaces the segment with one new single-cell segment per member
// cell, reverting that region to the finest granularity. The replaced
// segment is retired. Returns the newly created segments.
func (c *Collection) Split(s *Segment) ([]*Segment, error) {
	if !c.Contains(s) {
		return nil, &ErrInvalidSegment{ID: s.ID()}
	}

	out := make([]*Segment, 0, s.count)
	it := s.cells.Iterator()
	for it.HasNext() {
		idx := int(it.Next())
		row, col := idx/c.cols, idx%c.cols
		cell := c.newCellSegment(row, col)
		c.cellToSeg[idx] = cell.id
		out = append(out, cell)
	}

	c.retire(s)
	return out, nil
}

// retire marks a segment dead and releases its membership set.
func (c *Collection) retire(s *Segment) {
	s.alive = false
	s.count = 0
	s.cells = roaring.New()
	c.live--
}
