// Package testhelper provides in-memory fakes used across service-level
// unit tests, standing in for the real storage/queue adapters the way the
// teacher's testhelper package stands in for a live Postgres container.
package testhelper

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
)

// MemStorage is an in-memory port.StorageAdapter, sufficient to exercise
// every invariant the Draft Store, File Stager and Submission Engine
// depend on: conditional create, move-with-conflict-detection, prefix
// listing.
type MemStorage struct {
	mu   sync.Mutex
	objs map[string][]byte

	// FailMoveOnce, when set, causes the next Move whose dst matches the
	// given key to fail once with entity.KindIO, then succeed on retry —
	// used to simulate spec §8 scenario 5 (partial attachment failure).
	FailMoveOnce map[string]bool
}

// NewMemStorage builds an empty MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{objs: make(map[string][]byte), FailMoveOnce: make(map[string]bool)}
}

func (m *MemStorage) Put(_ context.Context, key string, data io.Reader, _ int64, _ string, mustNotExist bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mustNotExist {
		if _, ok := m.objs[key]; ok {
			return entity.NewError(entity.KindConflict, "object exists")
		}
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return entity.Wrap(entity.KindIO, "reading body", err)
	}
	m.objs[key] = b
	return nil
}

func (m *MemStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objs[key]
	if !ok {
		return nil, entity.NewError(entity.KindNotFound, "object not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *MemStorage) List(_ context.Context, prefix string) ([]port.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []port.ObjectInfo
	for k, v := range m.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, port.ObjectInfo{Key: k, SizeBytes: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, key)
	return nil
}

func (m *MemStorage) Move(ctx context.Context, srcKey, dstKey string, mustNotExist bool) error {
	m.mu.Lock()
	if m.FailMoveOnce[dstKey] {
		delete(m.FailMoveOnce, dstKey)
		m.mu.Unlock()
		return entity.NewError(entity.KindIO, "simulated transient move failure")
	}
	m.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.objs[srcKey]
	if !ok {
		if dst, ok := m.objs[dstKey]; ok {
			_ = dst
			return nil // idempotent: already moved
		}
		return entity.NewError(entity.KindNotFound, "move source not found")
	}
	if dst, ok := m.objs[dstKey]; ok {
		if mustNotExist && !bytes.Equal(dst, src) {
			return entity.NewError(entity.KindConflict, "move destination exists with different bytes")
		}
	}
	m.objs[dstKey] = src
	delete(m.objs, srcKey)
	return nil
}

func (m *MemStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objs[key]
	return ok, nil
}

// MemQueue is an in-memory port.MoveQueue collecting enqueued jobs for
// assertions, instead of round-tripping through a real River instance.
type MemQueue struct {
	mu   sync.Mutex
	Jobs []port.PendingMoveJob
}

func NewMemQueue() *MemQueue { return &MemQueue{} }

func (q *MemQueue) EnqueueMove(_ context.Context, job port.PendingMoveJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Jobs = append(q.Jobs, job)
	return nil
}
