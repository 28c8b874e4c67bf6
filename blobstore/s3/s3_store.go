package s3

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/walstore/blobstore"
)

// defaultRegion needs no LocationConstraint on CreateBucket.
const defaultRegion = "us-east-1"

// Options configures a Store.
type Options struct {
	// Region is used as the LocationConstraint of created buckets.
	Region string

	// UsePathStyle forces path-style addressing. Only honored by the
	// constructors that build the S3 client.
	UsePathStyle bool

	// Upload configures uploads of segment data.
	Upload UploadConfig
}

// Store implements blobstore.ObjectStore for S3.
type Store struct {
	client   Client
	uploader *manager.Uploader
	opts     Options
}

var _ blobstore.ObjectStore = (*Store)(nil)

// NewStore creates a new S3 object store over client.
func NewStore(client Client, optFns ...func(*Options)) *Store {
	opts := Options{Upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		client:   client,
		uploader: newUploader(client, opts.Upload),
		opts:     opts,
	}
}

// NewFromConfig creates a Store with an S3 client built from cfg.
// The region defaults to cfg.Region.
func NewFromConfig(cfg aws.Config, optFns ...func(*Options)) *Store {
	opts := Options{Region: cfg.Region}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
	})
	withRegion := func(o *Options) { o.Region = cfg.Region }
	return NewStore(client, append([]func(*Options){withRegion}, optFns...)...)
}

// NewFromDefaultConfig loads the shared AWS configuration (environment,
// profile, IMDS) for region and creates a Store.
func NewFromDefaultConfig(ctx context.Context, region string, optFns ...func(*Options)) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, optFns...), nil
}

// CreateBucket creates bucket in the configured region.
func (s *Store) CreateBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if s.opts.Region != "" && s.opts.Region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.opts.Region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		if isBucketExists(err) {
			return blobstore.ErrBucketExists
		}
		return wrapError("create bucket", bucket, "", err)
	}
	return nil
}

// Put writes a small object with a single request.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	if _, err := s.client.PutObject(ctx, s.opts.Upload.putInput(bucket, key, data)); err != nil {
		return wrapError("put", bucket, key, err)
	}
	return nil
}

// PutStream uploads body. Rewindable bodies of known length up to the part
// size go through PutObject, which the SDK retries by seeking the body back to
// its start. Everything else goes through the multipart uploader.
func (s *Store) PutStream(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	if _, ok := body.(io.Seeker); ok && size >= 0 && size <= s.opts.Upload.PartSize {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			Body:          body,
			ContentLength: aws.Int64(size),
		})
		if err != nil {
			return wrapError("put", bucket, key, err)
		}
		return nil
	}

	input := s.opts.Upload.multipartInput(bucket, key, &s3.PutObjectInput{Body: body})
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return wrapError("upload", bucket, key, err)
	}
	return nil
}

// Get streams an object.
func (s *Store) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, wrapError("get", bucket, key, err)
	}
	return &objectReader{ReadCloser: resp.Body, bucket: bucket, key: key}, nil
}

// ListAfter issues a single ListObjectsV2 request. Only the first page is
// read, so limit should not exceed the service page size of 1000.
func (s *Store) ListAfter(ctx context.Context, bucket, prefix, startAfter string, limit int) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if startAfter != "" {
		input.StartAfter = aws.String(startAfter)
	}
	if limit > 0 {
		input.MaxKeys = aws.Int32(int32(limit))
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, wrapError("list", bucket, "", err)
	}

	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		if obj.Key == nil {
			continue
		}
		keys = append(keys, *obj.Key)
		if limit > 0 && len(keys) == limit {
			break
		}
	}
	return keys, nil
}
