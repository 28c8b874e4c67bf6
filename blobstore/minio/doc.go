// Package minio provides a blobstore.ObjectStore implementation using the MinIO client.
//
// It works against MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "")
//	backend, err := walstore.New(ctx, store, "wal-segments", "cluster-1")
//
// # Errors
//
// Throttling, timeouts and 5xx responses are reported as retryable
// blobstore.TransportError values. Missing objects map to blobstore.ErrNotFound.
package minio
