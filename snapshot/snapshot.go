// Package snapshot serializes a finished partition as a compact label
// raster: live segments renumbered densely, one label per cell.
//
// The format is self-describing: a fixed magic, the name of the compression
// codec, then the gob-encoded payload. Snapshots written with one codec can
// be read back without knowing which codec was used.
package snapshot

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/robertogiachetta/aegis-origin/blobstore"
	"github.com/robertogiachetta/aegis-origin/segment"
)

var magic = [4]byte{'A', 'G', 'S', '1'}

// Snapshot is a serializable view of a partition: one dense label per cell,
// row-major.
type Snapshot struct {
	Rows     int
	Cols     int
	Segments int
	Labels   []uint32
}

// Capture renders the collection's current partition into a Snapshot.
// Labels are assigned in order of first appearance during a row-major scan,
// so equal partitions always capture identically.
func Capture(coll *segment.Collection) (*Snapshot, error) {
	rows, cols := coll.Rows(), coll.Cols()
	labels := make([]uint32, rows*cols)
	assigned := make(map[segment.ID]uint32, coll.Count())

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			s, err := coll.Get(row, col)
			if err != nil {
				return nil, err
			}
			label, ok := assigned[s.ID()]
			if !ok {
				label = uint32(len(assigned))
				assigned[s.ID()] = label
			}
			labels[row*cols+col] = label
		}
	}

	return &Snapshot{
		Rows:     rows,
		Cols:     cols,
		Segments: len(assigned),
		Labels:   labels,
	}, nil
}

// Write serializes the snapshot with the given compressor. A nil compressor
// uses Default.
func (s *Snapshot) Write(w io.Writer, c Compressor) error {
	if c == nil {
		c = Default
	}

	name := c.Name()
	if len(name) > 255 {
		return fmt.Errorf("compressor name too long: %q", name)
	}
	header := append(magic[:], byte(len(name)))
	header = append(header, name...)
	if _, err := w.Write(header); err != nil {
		return err
	}

	cw := c.NewWriter(w)
	if err := gob.NewEncoder(cw).Encode(s); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

// Read deserializes a snapshot, resolving the compression codec from the
// header.
func Read(r io.Reader) (*Snapshot, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	if [4]byte(hdr[:4]) != magic {
		return nil, fmt.Errorf("not a partition snapshot")
	}

	name := make([]byte, hdr[4])
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, fmt.Errorf("read codec name: %w", err)
	}
	c, ok := ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("unknown snapshot codec: %q", name)
	}

	cr, err := c.NewReader(r)
	if err != nil {
		return nil, err
	}

	var s Snapshot
	if err := gob.NewDecoder(cr).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(s.Labels) != s.Rows*s.Cols {
		return nil, fmt.Errorf("corrupt snapshot: %d labels for %dx%d cells", len(s.Labels), s.Rows, s.Cols)
	}
	return &s, nil
}

// Save writes the snapshot to a blob store under the given name.
func Save(ctx context.Context, store blobstore.Store, name string, s *Snapshot, c Compressor) error {
	var buf bytes.Buffer
	if err := s.Write(&buf, c); err != nil {
		return err
	}
	return store.Put(ctx, name, &buf)
}

// Load reads a snapshot back from a blob store.
func Load(ctx context.Context, store blobstore.Store, name string) (*Snapshot, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Read(rc)
}
