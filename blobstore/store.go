package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrBucketExists is returned by CreateBucket when the bucket is already present.
var ErrBucketExists = errors.New("bucket already exists")

// ErrNoSuchBucket is returned when an operation targets a missing bucket.
var ErrNoSuchBucket = errors.New("no such bucket")

// ObjectStore is an abstraction over a bucketed object store.
//
// Implementations must be safe for concurrent use. Retry and timeout policy
// belongs to the implementation's transport.
type ObjectStore interface {
	// CreateBucket creates a bucket. It returns ErrBucketExists if the bucket
	// is already present.
	CreateBucket(ctx context.Context, bucket string) error

	// Put writes a small object atomically, replacing any previous version.
	Put(ctx context.Context, bucket, key string, data []byte) error

	// PutStream uploads body as one object, replacing any previous version.
	// size is the exact body length, or -1 if unknown. A body that also
	// implements io.Seeker may be rewound to retry the upload.
	PutStream(ctx context.Context, bucket, key string, body io.Reader, size int64) error

	// Get opens an object for reading. The caller closes the reader.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// ListAfter returns up to limit keys that start with prefix and sort
	// strictly after startAfter, in ascending order.
	ListAfter(ctx context.Context, bucket, prefix, startAfter string, limit int) ([]string, error)
}

// TransportError wraps a failure reported by the underlying object-store
// client, classified as retryable or fatal.
type TransportError struct {
	Op        string
	Bucket    string
	Key       string
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err wraps a TransportError marked retryable.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable
}
