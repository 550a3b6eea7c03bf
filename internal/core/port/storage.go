package port

import (
	"context"
	"io"
)

// ObjectInfo is the metadata List returns for one stored object.
type ObjectInfo struct {
	Key          string
	SizeBytes    int64
	LastModified int64 // unix seconds
}

// StorageAdapter is the object-store boundary every backend implements
// (local filesystem for dev, S3 in production). All paths are keys relative
// to the one root the adapter is constructed with, shared by every tenant;
// callers put the tenant as the first key segment, and never see or
// construct absolute provider paths.
type StorageAdapter interface {
	// Put writes data at key. When mustNotExist is true the write fails
	// with entity.KindConflict if an object already exists at key — this
	// is how the Submission Engine enforces immutability (§4.8) without a
	// separate existence check racing the write.
	Put(ctx context.Context, key string, data io.Reader, size int64, contentType string, mustNotExist bool) error

	// Get opens a reader for the object at key. The caller must close it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns every object whose key has the given prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes the object at key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Move relocates an object from srcKey to dstKey. When mustNotExist is
	// true it fails with entity.KindConflict rather than overwrite an
	// existing object at dstKey. Implementations that cannot rename across
	// the two keys atomically fall back to copy-then-delete.
	Move(ctx context.Context, srcKey, dstKey string, mustNotExist bool) error

	// Exists reports whether an object is present at key.
	Exists(ctx context.Context, key string) (bool, error)
}
