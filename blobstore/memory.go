package blobstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// MemoryStore is an in-memory ObjectStore implementation for testing.
// It stores objects in memory without any filesystem dependency.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte

	puts  atomic.Int64
	gets  atomic.Int64
	lists atomic.Int64
}

// NewMemoryStore creates a new in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]map[string][]byte),
	}
}

// CreateBucket creates an empty bucket.
func (m *MemoryStore) CreateBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buckets[bucket]; ok {
		return ErrBucketExists
	}
	m.buckets[bucket] = make(map[string][]byte)
	return nil
}

// Put writes an object atomically.
func (m *MemoryStore) Put(_ context.Context, bucket, key string, data []byte) error {
	m.puts.Add(1)

	// Copy to prevent external mutation
	copied := make([]byte, len(data))
	copy(copied, data)

	return m.store(bucket, key, copied)
}

// PutStream drains body and stores it as one object.
func (m *MemoryStore) PutStream(ctx context.Context, bucket, key string, body io.Reader, _ int64) error {
	m.puts.Add(1)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return &TransportError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.store(bucket, key, buf.Bytes())
}

func (m *MemoryStore) store(bucket, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	objects, ok := m.buckets[bucket]
	if !ok {
		return &TransportError{Op: "put", Bucket: bucket, Key: key, Err: ErrNoSuchBucket}
	}
	objects[key] = data
	return nil
}

// Get returns a reader over a copy of the object.
func (m *MemoryStore) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.gets.Add(1)

	m.mu.RLock()
	defer m.mu.RUnlock()

	objects, ok := m.buckets[bucket]
	if !ok {
		return nil, &TransportError{Op: "get", Bucket: bucket, Key: key, Err: ErrNoSuchBucket}
	}
	data, ok := objects[key]
	if !ok {
		return nil, ErrNotFound
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	return io.NopCloser(bytes.NewReader(copied)), nil
}

// ListAfter returns up to limit keys with prefix sorting after startAfter.
func (m *MemoryStore) ListAfter(_ context.Context, bucket, prefix, startAfter string, limit int) ([]string, error) {
	m.lists.Add(1)

	m.mu.RLock()
	defer m.mu.RUnlock()

	objects, ok := m.buckets[bucket]
	if !ok {
		return nil, &TransportError{Op: "list", Bucket: bucket, Err: ErrNoSuchBucket}
	}

	var names []string
	for name := range objects {
		if strings.HasPrefix(name, prefix) && name > startAfter {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Delete removes an object. Missing objects are ignored.
func (m *MemoryStore) Delete(_ context.Context, bucket, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if objects, ok := m.buckets[bucket]; ok {
		delete(objects, key)
	}
}

// MemoryStats counts calls made against a MemoryStore.
type MemoryStats struct {
	Puts  int64
	Gets  int64
	Lists int64
}

// Stats returns the number of calls served so far.
func (m *MemoryStore) Stats() MemoryStats {
	return MemoryStats{
		Puts:  m.puts.Load(),
		Gets:  m.gets.Load(),
		Lists: m.lists.Load(),
	}
}
