package testutil

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/hupe1980/walstore/blobstore"
)

// Op names an ObjectStore operation.
type Op string

const (
	OpCreateBucket Op = "create_bucket"
	OpPut          Op = "put"
	OpPutStream    Op = "put_stream"
	OpGet          Op = "get"
	OpList         Op = "list"
	// OpRead fails reads from a body returned by Get after its first bytes.
	OpRead Op = "read"
)

type fault struct {
	op        Op
	match     string
	err       error
	remaining int // <= 0 means every time
}

// FaultyStore wraps an ObjectStore and injects errors.
type FaultyStore struct {
	blobstore.ObjectStore

	mu     sync.Mutex
	faults []*fault
	calls  map[Op]int
}

var _ blobstore.ObjectStore = (*FaultyStore)(nil)

// NewFaultyStore wraps inner.
func NewFaultyStore(inner blobstore.ObjectStore) *FaultyStore {
	return &FaultyStore{ObjectStore: inner, calls: make(map[Op]int)}
}

// Fail makes every op on keys containing match return err.
// An empty match applies to all keys.
func (s *FaultyStore) Fail(op Op, match string, err error) {
	s.FailN(op, match, 0, err)
}

// FailN is like Fail but only for the next n matching calls.
func (s *FaultyStore) FailN(op Op, match string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, &fault{op: op, match: match, err: err, remaining: n})
}

// Reset removes all faults and call counts.
func (s *FaultyStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = nil
	s.calls = make(map[Op]int)
}

// Calls returns how often op was invoked.
func (s *FaultyStore) Calls(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *FaultyStore) check(op Op, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op != OpRead {
		s.calls[op]++
	}
	for _, f := range s.faults {
		if f.op != op || !strings.Contains(key, f.match) {
			continue
		}
		if f.remaining < 0 {
			continue
		}
		if f.remaining > 0 {
			f.remaining--
			if f.remaining == 0 {
				f.remaining = -1
			}
		}
		return f.err
	}
	return nil
}

func (s *FaultyStore) CreateBucket(ctx context.Context, bucket string) error {
	if err := s.check(OpCreateBucket, bucket); err != nil {
		return err
	}
	return s.ObjectStore.CreateBucket(ctx, bucket)
}

func (s *FaultyStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := s.check(OpPut, key); err != nil {
		return err
	}
	return s.ObjectStore.Put(ctx, bucket, key, data)
}

func (s *FaultyStore) PutStream(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	if err := s.check(OpPutStream, key); err != nil {
		return err
	}
	return s.ObjectStore.PutStream(ctx, bucket, key, body, size)
}

func (s *FaultyStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := s.check(OpGet, key); err != nil {
		return nil, err
	}
	rc, err := s.ObjectStore.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	if err := s.check(OpRead, key); err != nil {
		return &failingReader{ReadCloser: rc, err: err}, nil
	}
	return rc, nil
}

func (s *FaultyStore) ListAfter(ctx context.Context, bucket, prefix, startAfter string, limit int) ([]string, error) {
	if err := s.check(OpList, prefix); err != nil {
		return nil, err
	}
	return s.ObjectStore.ListAfter(ctx, bucket, prefix, startAfter, limit)
}

// failingReader returns err after the first successful read.
type failingReader struct {
	io.ReadCloser
	err  error
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.read {
		return 0, r.err
	}
	r.read = true
	n, err := r.ReadCloser.Read(p)
	if err == io.EOF {
		return n, r.err
	}
	return n, err
}
