package s3

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/walstore/internal/hash"
)

// UploadConfig tunes how segment data and indexes are written.
type UploadConfig struct {
	// PartSize is the multipart part size. Rewindable segment bodies of known
	// length up to PartSize skip multipart and use a single PutObject.
	// Default: 8MB
	PartSize int64

	// Concurrency is the number of parts uploaded in parallel.
	// Default: 5
	Concurrency int

	// EnableChecksum attaches CRC32C checksums: a precomputed one for index
	// objects, an SDK-computed one for multipart segment uploads.
	// Default: true
	EnableChecksum bool

	// LeavePartsOnError keeps the parts of a failed multipart upload instead
	// of aborting it.
	// Default: false
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the settings used when none are given.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 << 20,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

// putInput builds a single-request upload of data.
func (c UploadConfig) putInput(bucket, key string, data []byte) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if c.EnableChecksum {
		input.ChecksumCRC32C = aws.String(computeCRC32C(data))
	}
	return input
}

// multipartInput builds an upload request for the manager.Uploader.
func (c UploadConfig) multipartInput(bucket, key string, input *s3.PutObjectInput) *s3.PutObjectInput {
	input.Bucket = aws.String(bucket)
	input.Key = aws.String(key)
	if c.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	return input
}

// computeCRC32C returns the base64 of the big-endian CRC32C, as S3 expects it.
func computeCRC32C(data []byte) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], hash.CRC32C(data))
	return base64.StdEncoding.EncodeToString(b[:])
}
