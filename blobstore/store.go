// Package blobstore abstracts where partition snapshots are kept: in memory,
// on the local filesystem, or in S3-compatible object storage.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for persisting and retrieving snapshot blobs.
type Store interface {
	// Put writes the blob under the given name, replacing any previous
	// content.
	Put(ctx context.Context, name string, r io.Reader) error

	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}
