// Package blobstore abstracts where snapshots live: local filesystem,
// memory, or S3-compatible object storage (see the s3 and minio
// subpackages). Snapshots are small and read in full, so the surface is
// whole-object Put/Open rather than block-level random access.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore stores immutable named blobs.
type BlobStore interface {
	// Put writes a blob, replacing any existing blob with the same name.
	Put(ctx context.Context, name string, data []byte) error
	// Open opens a blob for reading. The caller must close the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ReadAll opens and fully reads a blob.
func ReadAll(ctx context.Context, bs BlobStore, name string) ([]byte, error) {
	rc, err := bs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
