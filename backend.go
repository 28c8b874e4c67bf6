package walstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/walstore/blobstore"
	"github.com/hupe1980/walstore/index"
	"github.com/hupe1980/walstore/internal/fs"
	"github.com/hupe1980/walstore/internal/keys"
	"github.com/hupe1980/walstore/internal/locator"
	"github.com/hupe1980/walstore/internal/resource"
	"github.com/hupe1980/walstore/stream"
	"golang.org/x/sync/errgroup"
)

// partialMarker tags in-flight segment downloads next to their destination.
const partialMarker = ".partial-"

// Backend stores and retrieves WAL segments in an object store.
// It is safe for concurrent use.
type Backend struct {
	store        blobstore.ObjectStore
	locator      *locator.Locator
	config       Config
	fs           fs.FileSystem
	rc           *resource.Controller
	throttled    bool
	maxIndexSize int64
	logger       *Logger
	metrics      MetricsCollector
}

// New creates a Backend for bucket and clusterID and creates the bucket
// unless WithoutBucketCreation is given. An existing bucket is not an error.
func New(ctx context.Context, store blobstore.ObjectStore, bucket, clusterID string, optFns ...Option) (*Backend, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil object store", ErrInvalidArgument)
	}
	cfg := Config{Bucket: bucket, ClusterID: clusterID}
	if err := cfg.validate(); err != nil {
		return nil, &ConfigurationError{Bucket: bucket, cause: err}
	}

	o := applyOptions(optFns)
	b := &Backend{
		store:   store,
		locator: locator.New(store),
		config:  cfg,
		fs:      o.fs,
		rc: resource.NewController(resource.Config{
			IOLimitBytesPerSec:     o.ioLimitBytesPerSec,
			MaxConcurrentTransfers: o.maxConcurrentTransfers,
		}),
		throttled:    o.ioLimitBytesPerSec > 0,
		maxIndexSize: o.maxIndexSize,
		logger:       o.logger,
		metrics:      o.metricsCollector,
	}

	if o.createBucket {
		if err := store.CreateBucket(ctx, bucket); err != nil {
			if !errors.Is(err, blobstore.ErrBucketExists) {
				b.logger.ErrorContext(ctx, "create bucket failed", "bucket", bucket, "error", err)
				return nil, &ConfigurationError{Bucket: bucket, cause: err}
			}
			b.logger.DebugContext(ctx, "bucket already exists", "bucket", bucket)
		}
	}

	return b, nil
}

// DefaultConfig returns a copy of the configuration given to New.
func (b *Backend) DefaultConfig() Config {
	return b.config
}

func (b *Backend) resolve(cfg *Config) (Config, error) {
	c := b.config
	if cfg != nil {
		c = *cfg
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Store uploads a segment and then its index. The data object is written
// first, so a visible index always has its data. Re-storing the same frame
// range overwrites both objects.
func (b *Backend) Store(ctx context.Context, cfg *Config, meta SegmentMeta, data stream.Source, segmentIndex []byte) (err error) {
	start := time.Now()
	var written int64
	logger := b.logger.WithNamespace(meta.Namespace).WithSegment(meta.StartFrameNo, meta.EndFrameNo)
	defer func() {
		d := time.Since(start)
		b.metrics.RecordStore(written, d, err)
		logger.LogStore(ctx, meta.SegmentID, written, d, err)
	}()

	c, err := b.resolve(cfg)
	if err != nil {
		return err
	}
	if err := meta.validate(); err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: nil segment data", ErrInvalidArgument)
	}

	if err := b.rc.AcquireTransfer(ctx); err != nil {
		return translateError("store", err)
	}
	defer b.rc.ReleaseTransfer()

	folder := keys.FolderKey{ClusterID: c.ClusterID, Namespace: meta.Namespace}
	seg := keys.SegmentKey{StartFrameNo: meta.StartFrameNo, EndFrameNo: meta.EndFrameNo}

	size := int64(-1)
	if n, ok := data.Len(); ok {
		size = n
	}

	src := data
	if b.throttled {
		src = &throttledSource{Source: data, rc: b.rc}
	}
	body := &countingReader{ReadSeekCloser: stream.NewRetryable(ctx, src).Reader()}
	defer body.Close()

	if err := b.store.PutStream(ctx, c.Bucket, keys.DataKey(folder, seg), body, size); err != nil {
		return translateError("store segment", err)
	}
	written = body.n

	if err := b.store.Put(ctx, c.Bucket, keys.IndexKey(folder, seg), segmentIndex); err != nil {
		return translateError("store index", err)
	}
	return nil
}

// FetchSegment downloads the segment containing frameNo to destPath and
// returns its parsed index. Data and index are downloaded concurrently. The
// data lands in a temporary file next to destPath and is renamed over it only
// when both halves succeed, so a failed fetch leaves destPath untouched.
//
// It fails with FrameNotFoundError when no segment starts at or below
// frameNo, and with SegmentGapError when the closest such segment ends at or
// before frameNo.
func (b *Backend) FetchSegment(ctx context.Context, cfg *Config, namespace string, frameNo uint64, destPath string) (m *index.Map, err error) {
	start := time.Now()
	var seg keys.SegmentKey
	logger := b.logger.WithNamespace(namespace)
	defer func() {
		d := time.Since(start)
		b.metrics.RecordFetch(d, err)
		logger.LogFetch(ctx, frameNo, seg, d, err)
	}()

	c, err := b.resolve(cfg)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		return nil, fmt.Errorf("%w: empty namespace", ErrInvalidArgument)
	}
	if destPath == "" {
		return nil, fmt.Errorf("%w: empty destination path", ErrInvalidArgument)
	}

	folder := keys.FolderKey{ClusterID: c.ClusterID, Namespace: namespace}
	found, ok, err := b.locator.FindSegment(ctx, c.Bucket, folder, frameNo)
	if err != nil {
		return nil, translateError("locate segment", err)
	}
	if !ok {
		return nil, &FrameNotFoundError{Namespace: namespace, FrameNo: frameNo}
	}
	seg = found
	if !seg.Includes(frameNo) {
		return nil, &SegmentGapError{
			Namespace:    namespace,
			FrameNo:      frameNo,
			StartFrameNo: seg.StartFrameNo,
			EndFrameNo:   seg.EndFrameNo,
		}
	}

	if err := b.rc.AcquireTransfer(ctx); err != nil {
		return nil, translateError("fetch", err)
	}
	defer b.rc.ReleaseTransfer()

	// A missing half of a located pair means the segment is not there yet.
	notFound := func(err error) error {
		var be *BackendError
		if errors.Is(err, blobstore.ErrNotFound) && !errors.As(err, &be) {
			return &FrameNotFoundError{Namespace: namespace, FrameNo: frameNo, cause: err}
		}
		return err
	}

	tmpPath := destPath + partialMarker + uuid.NewString()

	var idx *index.Map
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return notFound(b.downloadSegment(gctx, c.Bucket, keys.DataKey(folder, seg), tmpPath))
	})
	g.Go(func() error {
		var err error
		idx, err = b.downloadIndex(gctx, c.Bucket, keys.IndexKey(folder, seg))
		return notFound(err)
	})

	err = g.Wait()
	if err == nil {
		if rerr := b.fs.Rename(tmpPath, destPath); rerr != nil {
			err = &BackendError{Op: "rename segment", cause: rerr}
		}
	}
	if err != nil {
		if idx != nil {
			_ = idx.Close()
		}
		if rerr := b.fs.Remove(tmpPath); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			logger.WarnContext(ctx, "remove partial segment failed", "path", tmpPath, "error", rerr)
		}
		return nil, translateError("fetch", err)
	}
	return idx, nil
}

func (b *Backend) downloadSegment(ctx context.Context, bucket, key, destPath string) error {
	rc, err := b.store.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	r := &trackingReader{r: b.reader(ctx, rc)}
	if _, err := fs.WriteFile(b.fs, destPath, r); err != nil {
		if r.err != nil {
			return r.err
		}
		return &BackendError{Op: "write segment", cause: err}
	}
	return nil
}

func (b *Backend) downloadIndex(ctx context.Context, bucket, key string) (*index.Map, error) {
	rc, err := b.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(b.reader(ctx, rc), b.maxIndexSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > b.maxIndexSize {
		return nil, &DecodeError{Kind: "index", Key: key, cause: fmt.Errorf("index exceeds %d bytes", b.maxIndexSize)}
	}

	m, err := index.Parse(data)
	if err != nil {
		return nil, &DecodeError{Kind: "index", Key: key, cause: err}
	}
	return m, nil
}

func (b *Backend) reader(ctx context.Context, r io.Reader) io.Reader {
	if b.throttled {
		return resource.NewRateLimitedReader(ctx, r, b.rc)
	}
	return &contextReader{ctx: ctx, r: r}
}

// Meta reports the end frame of the most recent segment of namespace.
func (b *Backend) Meta(ctx context.Context, cfg *Config, namespace string) (meta DbMeta, err error) {
	start := time.Now()
	logger := b.logger.WithNamespace(namespace)
	defer func() {
		b.metrics.RecordMeta(time.Since(start), err)
		logger.LogMeta(ctx, meta.MaxFrameNo, err)
	}()

	c, err := b.resolve(cfg)
	if err != nil {
		return DbMeta{}, err
	}
	if namespace == "" {
		return DbMeta{}, fmt.Errorf("%w: empty namespace", ErrInvalidArgument)
	}

	folder := keys.FolderKey{ClusterID: c.ClusterID, Namespace: namespace}
	maxFrameNo, err := b.locator.Meta(ctx, c.Bucket, folder)
	if err != nil {
		return DbMeta{}, translateError("meta", err)
	}
	return DbMeta{MaxFrameNo: maxFrameNo}, nil
}
