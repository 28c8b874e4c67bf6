package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/hupe1980/walstore/blobstore"
	"github.com/minio/minio-go/v7"
)

// Store implements blobstore.ObjectStore for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	region string
}

var _ blobstore.ObjectStore = (*Store)(nil)

// NewStore creates a new MinIO object store.
// region is passed to MakeBucket and may be empty.
func NewStore(client *minio.Client, region string) *Store {
	return &Store{
		client: client,
		region: region,
	}
}

// CreateBucket creates bucket.
func (s *Store) CreateBucket(ctx context.Context, bucket string) error {
	err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region})
	if err != nil {
		switch errorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return blobstore.ErrBucketExists
		}
		return wrapError("create bucket", bucket, "", err)
	}
	return nil
}

// Put writes an object atomically.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	return s.PutStream(ctx, bucket, key, bytes.NewReader(data), int64(len(data)))
}

// PutStream uploads body. A negative size streams with multipart uploads.
func (s *Store) PutStream(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	if size < 0 {
		size = -1
	}
	if _, err := s.client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{}); err != nil {
		return wrapError("put", bucket, key, err)
	}
	return nil
}

// Get streams an object.
func (s *Store) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapError("get", bucket, key, err)
	}

	// GetObject is lazy; Stat issues the request.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, wrapError("get", bucket, key, err)
	}
	return &objectReader{ReadCloser: obj, bucket: bucket, key: key}, nil
}

// ListAfter returns up to limit keys after startAfter. The listing is
// abandoned once limit keys arrived, so a bounded call costs one request.
func (s *Store) ListAfter(ctx context.Context, bucket, prefix, startAfter string, limit int) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{
		Prefix:     prefix,
		StartAfter: startAfter,
		Recursive:  true,
	}
	if limit > 0 {
		opts.MaxKeys = limit
	}

	var keys []string
	for obj := range s.client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, wrapError("list", bucket, "", obj.Err)
		}
		keys = append(keys, obj.Key)
		if limit > 0 && len(keys) == limit {
			break
		}
	}
	return keys, nil
}

// errorResponse extracts the service error from a possibly wrapped err.
func errorResponse(err error) minio.ErrorResponse {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp
	}
	return minio.ErrorResponse{}
}

func isNotFound(err error) bool {
	switch errorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// isRetryable treats throttling, timeouts and server faults as transient.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	resp := errorResponse(err)
	switch resp.Code {
	case "SlowDown", "RequestTimeout", "InternalError", "ServiceUnavailable":
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
}

func wrapError(op, bucket, key string, err error) error {
	if errorResponse(err).Code == "NoSuchBucket" {
		err = fmt.Errorf("%w: %w", blobstore.ErrNoSuchBucket, err)
	}
	return &blobstore.TransportError{
		Op:        op,
		Bucket:    bucket,
		Key:       key,
		Retryable: isRetryable(err),
		Err:       err,
	}
}

type objectReader struct {
	io.ReadCloser
	bucket string
	key    string
}

func (r *objectReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, &blobstore.TransportError{
			Op:        "read",
			Bucket:    r.bucket,
			Key:       r.key,
			Retryable: !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded),
			Err:       err,
		}
	}
	return n, err
}
