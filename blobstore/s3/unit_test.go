package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/walstore/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateBucket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient)

		mockClient.On("CreateBucket", mock.Anything, mock.MatchedBy(func(input *s3.CreateBucketInput) bool {
			return *input.Bucket == "wal" && input.CreateBucketConfiguration == nil
		})).Return(&s3.CreateBucketOutput{}, nil).Once()

		assert.NoError(t, store.CreateBucket(context.Background(), "wal"))
		mockClient.AssertExpectations(t)
	})

	t.Run("LocationConstraint", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient, func(o *Options) { o.Region = "eu-central-1" })

		mockClient.On("CreateBucket", mock.Anything, mock.MatchedBy(func(input *s3.CreateBucketInput) bool {
			return input.CreateBucketConfiguration != nil &&
				input.CreateBucketConfiguration.LocationConstraint == types.BucketLocationConstraintEuCentral1
		})).Return(&s3.CreateBucketOutput{}, nil).Once()

		assert.NoError(t, store.CreateBucket(context.Background(), "wal"))
		mockClient.AssertExpectations(t)
	})

	t.Run("AlreadyExists", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient)

		mockClient.On("CreateBucket", mock.Anything, mock.Anything).
			Return(nil, &types.BucketAlreadyOwnedByYou{}).Once()

		assert.ErrorIs(t, store.CreateBucket(context.Background(), "wal"), blobstore.ErrBucketExists)
	})

	t.Run("Denied", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient)

		mockClient.On("CreateBucket", mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"}).Once()

		err := store.CreateBucket(context.Background(), "wal")
		require.Error(t, err)
		assert.NotErrorIs(t, err, blobstore.ErrBucketExists)
		assert.False(t, blobstore.IsRetryable(err))
	})
}

func TestStore_Put(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient)

	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Bucket == "wal" && *input.Key == "ns/indexes/k" &&
			aws.ToInt64(input.ContentLength) == 5 &&
			aws.ToString(input.ChecksumCRC32C) == computeCRC32C([]byte("index"))
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "wal", "ns/indexes/k", []byte("index")))
	mockClient.AssertExpectations(t)
}

func TestStore_PutStream(t *testing.T) {
	t.Run("Seekable", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient)

		var got string
		mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
			return *input.Key == "ns/segments/k" && aws.ToInt64(input.ContentLength) == 7
		})).Run(func(args mock.Arguments) {
			input := args.Get(1).(*s3.PutObjectInput)
			b, _ := io.ReadAll(input.Body)
			got = string(b)
		}).Return(&s3.PutObjectOutput{}, nil).Once()

		err := store.PutStream(context.Background(), "wal", "ns/segments/k", strings.NewReader("segment"), 7)
		require.NoError(t, err)
		assert.Equal(t, "segment", got)
		mockClient.AssertExpectations(t)
	})

	t.Run("UnknownSize", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient)

		var got string
		mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
			return *input.Key == "ns/segments/k" && input.ChecksumAlgorithm == types.ChecksumAlgorithmCrc32c
		})).Run(func(args mock.Arguments) {
			input := args.Get(1).(*s3.PutObjectInput)
			b, _ := io.ReadAll(input.Body)
			got = string(b)
		}).Return(&s3.PutObjectOutput{}, nil).Once()

		body := io.MultiReader(strings.NewReader("seg"), strings.NewReader("ment"))
		err := store.PutStream(context.Background(), "wal", "ns/segments/k", body, -1)
		require.NoError(t, err)
		assert.Equal(t, "segment", got)
		mockClient.AssertExpectations(t)
	})
}

func TestStore_Get(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient)

		mockClient.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{}).Once()

		_, err := store.Get(context.Background(), "wal", "missing")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient)

		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return *input.Bucket == "wal" && *input.Key == "k"
		})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("data"))}, nil).Once()

		r, err := store.Get(context.Background(), "wal", "k")
		require.NoError(t, err)
		defer r.Close()

		b, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "data", string(b))
	})

	t.Run("BrokenBody", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient)

		body := io.NopCloser(io.MultiReader(strings.NewReader("da"), errReader{io.ErrUnexpectedEOF}))
		mockClient.On("GetObject", mock.Anything, mock.Anything).Return(&s3.GetObjectOutput{Body: body}, nil).Once()

		r, err := store.Get(context.Background(), "wal", "k")
		require.NoError(t, err)

		_, err = io.ReadAll(r)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.True(t, blobstore.IsRetryable(err))
	})
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestStore_ListAfter(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient)

	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return *input.Bucket == "wal" &&
			aws.ToString(input.Prefix) == "ns/indexes/" &&
			aws.ToString(input.StartAfter) == "ns/indexes/0042" &&
			aws.ToInt32(input.MaxKeys) == 1
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("ns/indexes/0043-0044")},
			{Key: aws.String("ns/indexes/0045-0046")},
		},
	}, nil).Once()

	keys, err := store.ListAfter(context.Background(), "wal", "ns/indexes/", "ns/indexes/0042", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns/indexes/0043-0044"}, keys)
	mockClient.AssertExpectations(t)
}

func TestStore_ListAfter_NoSuchBucket(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient)

	mockClient.On("ListObjectsV2", mock.Anything, mock.Anything).Return(nil, &types.NoSuchBucket{}).Once()

	_, err := store.ListAfter(context.Background(), "wal", "", "", 1)
	assert.ErrorIs(t, err, blobstore.ErrNoSuchBucket)
	assert.False(t, blobstore.IsRetryable(err))
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"RequestTimeout", &smithy.GenericAPIError{Code: "RequestTimeout"}, true},
		{"AccessDenied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"Canceled", context.Canceled, false},
		{"DeadlineExceeded", context.DeadlineExceeded, false},
		{"Plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapError("get", "wal", "k", tt.err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.retryable, blobstore.IsRetryable(err))
		})
	}
}

func TestComputeCRC32C(t *testing.T) {
	// CRC32C("123456789") = 0xE3069283
	assert.Equal(t, "4waSgw==", computeCRC32C([]byte("123456789")))
}
