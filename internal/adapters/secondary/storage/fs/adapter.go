// Package fs implements port.StorageAdapter over the local filesystem, the
// dev/test-parity backend alongside the S3 adapter (spec §4.4, §9 "two
// storage backends with identical semantics").
package fs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
)

// Adapter implements port.StorageAdapter rooted at a single directory.
// Logical keys are joined onto Root with filepath.Join, which also is
// what keeps two tenants from aliasing: every key the core constructs is
// already tenant-prefixed, and Join never climbs back out of Root because
// the core never emits ".." segments.
type Adapter struct {
	root string
}

// New builds an Adapter rooted at root, creating it if necessary.
func New(root string) (*Adapter, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("fs: creating root: %w", err)
	}
	return &Adapter{root: root}, nil
}

func (a *Adapter) path(key string) string {
	return filepath.Join(a.root, filepath.FromSlash(key))
}

// Put writes data at key, streaming rather than buffering. When
// mustNotExist is true the write uses O_EXCL so the create is atomic with
// the existence check.
func (a *Adapter) Put(_ context.Context, key string, data io.Reader, _ int64, _ string, mustNotExist bool) error {
	p := a.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return entity.Wrap(entity.KindIO, "creating parent directory", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mustNotExist {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(p, flags, 0o644)
	if err != nil {
		if mustNotExist && errors.Is(err, os.ErrExist) {
			return entity.NewError(entity.KindConflict, "object already exists")
		}
		return entity.Wrap(entity.KindIO, "opening object for write", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(p)
		return entity.Wrap(entity.KindIO, "writing object body", err)
	}
	return nil
}

func (a *Adapter) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(a.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, entity.NewError(entity.KindNotFound, "object not found")
		}
		return nil, entity.Wrap(entity.KindIO, "opening object", err)
	}
	return f, nil
}

func (a *Adapter) List(_ context.Context, prefix string) ([]port.ObjectInfo, error) {
	root := a.path(prefix)
	var out []port.ObjectInfo

	walkRoot := root
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		// prefix may not be a directory boundary (e.g. a partial filename
		// prefix); walk the parent and filter by string prefix instead.
		walkRoot = filepath.Dir(root)
	}

	err := filepath.WalkDir(walkRoot, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, port.ObjectInfo{Key: key, SizeBytes: info.Size(), LastModified: info.ModTime().Unix()})
		return nil
	})
	if err != nil {
		return nil, entity.Wrap(entity.KindIO, "listing objects", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (a *Adapter) Delete(_ context.Context, key string) error {
	if err := os.Remove(a.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return entity.Wrap(entity.KindIO, "deleting object", err)
	}
	return nil
}

// Move renames src to dst within the root. A cross-device rename (EXDEV)
// falls back to copy-then-remove. When mustNotExist is true and dst is
// already present, the two are compared by content hash: identical bytes
// are treated as an already-completed move (idempotent retry); differing
// bytes are a Conflict (SPEC_FULL.md §9 Open Questions decision).
func (a *Adapter) Move(ctx context.Context, srcKey, dstKey string, mustNotExist bool) error {
	srcPath := a.path(srcKey)
	dstPath := a.path(dstKey)

	if mustNotExist {
		if existing, err := os.ReadFile(dstPath); err == nil {
			srcBytes, srcErr := os.ReadFile(srcPath)
			if srcErr != nil {
				if errors.Is(srcErr, os.ErrNotExist) {
					return nil // source already gone, destination present: already moved.
				}
				return entity.Wrap(entity.KindIO, "reading move source for comparison", srcErr)
			}
			if sameBytes(existing, srcBytes) {
				os.Remove(srcPath)
				return nil
			}
			return entity.NewError(entity.KindConflict, "move destination exists with different content")
		}
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return entity.Wrap(entity.KindIO, "creating destination directory", err)
	}

	if err := os.Rename(srcPath, dstPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entity.NewError(entity.KindNotFound, "move source not found")
		}
		if linkErr, ok := err.(*os.LinkError); ok && isCrossDevice(linkErr) {
			return a.copyThenRemove(srcPath, dstPath)
		}
		return entity.Wrap(entity.KindIO, "renaming object", err)
	}
	return nil
}

func (a *Adapter) copyThenRemove(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return entity.Wrap(entity.KindIO, "opening move source", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return entity.Wrap(entity.KindIO, "opening move destination", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return entity.Wrap(entity.KindIO, "copying object across devices", err)
	}
	src.Close()
	return os.Remove(srcPath)
}

func (a *Adapter) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(a.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, entity.Wrap(entity.KindIO, "checking object existence", err)
	}
	return true, nil
}

func isCrossDevice(err *os.LinkError) bool {
	errno, ok := err.Err.(syscall.Errno)
	return ok && errno == syscall.EXDEV
}

func sameBytes(a, b []byte) bool {
	ha := sha256.Sum256(a)
	hb := sha256.Sum256(b)
	return bytes.Equal(ha[:], hb[:])
}
