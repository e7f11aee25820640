package snapshot

import (
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
)

// Compressor is a named compression codec for snapshot payloads.
type Compressor interface {
	// Name is the stable identifier stored in the snapshot header.
	Name() string
	// NewWriter wraps w with compression. Close flushes; it does not
	// close w.
	NewWriter(w io.Writer) io.WriteCloser
	// NewReader wraps r with decompression.
	NewReader(r io.Reader) (io.Reader, error)
}

// Default is the compressor used when none is specified.
var Default Compressor = S2{}

// ByName returns a built-in compressor by its stable name.
func ByName(name string) (Compressor, bool) {
	switch name {
	case "none":
		return None{}, true
	case "s2":
		return S2{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// None stores payloads uncompressed.
type None struct{}

func (None) Name() string { return "none" }

func (None) NewWriter(w io.Writer) io.WriteCloser { return nopWriteCloser{w} }

func (None) NewReader(r io.Reader) (io.Reader, error) { return r, nil }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// S2 compresses with klauspost's S2 (Snappy-compatible) codec.
type S2 struct{}

func (S2) Name() string { return "s2" }

func (S2) NewWriter(w io.Writer) io.WriteCloser { return s2.NewWriter(w) }

func (S2) NewReader(r io.Reader) (io.Reader, error) { return s2.NewReader(r), nil }

// LZ4 compresses with the LZ4 frame format.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) NewWriter(w io.Writer) io.WriteCloser { return lz4.NewWriter(w) }

func (LZ4) NewReader(r io.Reader) (io.Reader, error) { return lz4.NewReader(r), nil }
