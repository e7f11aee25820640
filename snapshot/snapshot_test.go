package snapshot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertogiachetta/aegis-origin/blobstore"
	"github.com/robertogiachetta/aegis-origin/raster"
	"github.com/robertogiachetta/aegis-origin/segment"
)

func testCollection(t *testing.T) *segment.Collection {
	t.Helper()
	r, err := raster.NewMemoryFromValues(2, 2, []float64{1, 1, 100, 7})
	require.NoError(t, err)
	coll := segment.NewCollection(r)

	a, err := coll.Get(0, 0)
	require.NoError(t, err)
	require.NoError(t, coll.MergeCell(a, 0, 1))
	return coll
}

func TestCapture(t *testing.T) {
	coll := testCollection(t)

	snap, err := Capture(coll)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Rows)
	assert.Equal(t, 2, snap.Cols)
	assert.Equal(t, 3, snap.Segments)
	// Labels are assigned in row-major first-appearance order.
	assert.Equal(t, []uint32{0, 0, 1, 2}, snap.Labels)
}

func TestWriteReadRoundTrip(t *testing.T) {
	coll := testCollection(t)
	snap, err := Capture(coll)
	require.NoError(t, err)

	compressors := []Compressor{nil, None{}, S2{}, LZ4{}}
	names := []string{"default", "none", "s2", "lz4"}

	for i, c := range compressors {
		t.Run(names[i], func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, snap.Write(&buf, c))

			got, err := Read(&buf)
			require.NoError(t, err)
			assert.Equal(t, snap, got)
		})
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	t.Run("BadMagic", func(t *testing.T) {
		_, err := Read(bytes.NewReader([]byte("XXXX\x00garbage")))
		assert.Error(t, err)
	})

	t.Run("UnknownCodec", func(t *testing.T) {
		payload := append(magic[:], 3)
		payload = append(payload, "zip"...)
		_, err := Read(bytes.NewReader(payload))
		assert.Error(t, err)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Read(bytes.NewReader(magic[:2]))
		assert.Error(t, err)
	})
}

func TestByName(t *testing.T) {
	for _, name := range []string{"none", "s2", "lz4"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("zstd")
	assert.False(t, ok)
}

func TestSaveLoadStores(t *testing.T) {
	ctx := context.Background()
	coll := testCollection(t)
	snap, err := Capture(coll)
	require.NoError(t, err)

	local, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	stores := map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  local,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Save(ctx, store, "partition", snap, LZ4{}))

			got, err := Load(ctx, store, "partition")
			require.NoError(t, err)
			assert.Equal(t, snap, got)

			_, err = Load(ctx, store, "absent")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}
