package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hupe1980/walstore/internal/fs"
)

const tmpMarker = ".tmp-"

// LocalStore implements ObjectStore on the local file system.
// Buckets are directories below root; keys are slash-separated relative paths.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root, fs: fs.Default}
}

func (s *LocalStore) bucketDir(bucket string) string {
	return filepath.Join(s.root, bucket)
}

func (s *LocalStore) objectPath(bucket, key string) string {
	return filepath.Join(s.bucketDir(bucket), filepath.FromSlash(key))
}

// CreateBucket creates the bucket directory.
func (s *LocalStore) CreateBucket(_ context.Context, bucket string) error {
	dir := s.bucketDir(bucket)
	if info, err := s.fs.Stat(dir); err == nil && info.IsDir() {
		return ErrBucketExists
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return &TransportError{Op: "create bucket", Bucket: bucket, Err: err}
	}
	return nil
}

func (s *LocalStore) checkBucket(op, bucket, key string) error {
	info, err := s.fs.Stat(s.bucketDir(bucket))
	if err != nil || !info.IsDir() {
		return &TransportError{Op: op, Bucket: bucket, Key: key, Err: ErrNoSuchBucket}
	}
	return nil
}

// Put writes an object atomically.
func (s *LocalStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	return s.PutStream(ctx, bucket, key, bytes.NewReader(data), int64(len(data)))
}

// PutStream writes body to a temporary file and renames it into place.
func (s *LocalStore) PutStream(ctx context.Context, bucket, key string, body io.Reader, _ int64) error {
	if err := s.checkBucket("put", bucket, key); err != nil {
		return err
	}

	dest := s.objectPath(bucket, key)
	if err := s.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &TransportError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}

	tmp := dest + tmpMarker + uuid.NewString()
	if _, err := fs.WriteFile(s.fs, tmp, body); err != nil {
		return &TransportError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	if err := s.fs.Rename(tmp, dest); err != nil {
		_ = s.fs.Remove(tmp)
		return &TransportError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}
	return nil
}

// Get opens an object for reading.
func (s *LocalStore) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := s.checkBucket("get", bucket, key); err != nil {
		return nil, err
	}

	f, err := s.fs.OpenFile(s.objectPath(bucket, key), os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &TransportError{Op: "get", Bucket: bucket, Key: key, Err: err}
	}
	return f, nil
}

// ListAfter walks the bucket and returns up to limit matching keys.
func (s *LocalStore) ListAfter(_ context.Context, bucket, prefix, startAfter string, limit int) ([]string, error) {
	if err := s.checkBucket("list", bucket, ""); err != nil {
		return nil, err
	}

	var names []string
	err := s.walk(s.bucketDir(bucket), "", func(key string) {
		if strings.HasPrefix(key, prefix) && key > startAfter {
			names = append(names, key)
		}
	})
	if err != nil {
		return nil, &TransportError{Op: "list", Bucket: bucket, Err: err}
	}
	sort.Strings(names)

	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (s *LocalStore) walk(dir, rel string, visit func(key string)) error {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		key := path.Join(rel, e.Name())
		if e.IsDir() {
			if err := s.walk(filepath.Join(dir, e.Name()), key, visit); err != nil {
				return err
			}
			continue
		}
		if strings.Contains(e.Name(), tmpMarker) {
			continue
		}
		visit(key)
	}
	return nil
}
