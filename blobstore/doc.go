// Package blobstore provides the object-store abstraction segments are persisted to.
//
// ObjectStore is a bucketed key/value store with ordered, bounded listing.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem, one directory per bucket
//   - s3.Store: Amazon S3 via aws-sdk-go-v2
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type ObjectStore interface {
//	    CreateBucket(ctx, bucket) error
//	    Put(ctx, bucket, key, data) error
//	    PutStream(ctx, bucket, key, body, size) error
//	    Get(ctx, bucket, key) (io.ReadCloser, error)
//	    ListAfter(ctx, bucket, prefix, startAfter, limit) ([]string, error)
//	}
//
// ListAfter must return keys in ascending byte order; segment lookup depends
// on it. Services whose listings are unordered (S3 Express directory buckets)
// cannot back an ObjectStore.
//
// Failures of the underlying client are reported as *TransportError with a
// retryable/fatal classification. Missing objects are reported as ErrNotFound.
package blobstore
