// Package s3 provides an Amazon S3 implementation of blobstore.ObjectStore.
//
// # Usage
//
//	store, err := s3.NewFromDefaultConfig(ctx, "us-west-2")
//	if err != nil {
//	    return err
//	}
//	backend, err := walstore.New(ctx, store, "wal-segments", "cluster-1")
//
// # Features
//
//   - Single bounded ListObjectsV2 call per lookup (Prefix + StartAfter + MaxKeys)
//   - Rewindable PutObject bodies for known-length segments, multipart uploads otherwise
//   - CRC32C checksums on small object uploads
//   - Transport errors classified with the SDK's default retryables
package s3
