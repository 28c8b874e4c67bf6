package walstore

import (
	"log/slog"

	"github.com/hupe1980/walstore/internal/fs"
)

// DefaultMaxIndexSize bounds index downloads unless WithMaxIndexSize is set.
const DefaultMaxIndexSize = 256 << 20

type options struct {
	metricsCollector       MetricsCollector
	logger                 *Logger
	ioLimitBytesPerSec     int64
	maxConcurrentTransfers int64
	createBucket           bool
	maxIndexSize           int64
	fs                     fs.FileSystem
}

// Option configures a Backend.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &walstore.BasicMetricsCollector{}
//	b, _ := walstore.New(ctx, store, "wal", "cluster-1", walstore.WithMetricsCollector(metrics))
//	// ... use b ...
//	stats := metrics.GetStats()
//	fmt.Printf("Stored: %d bytes, avg fetch: %dns\n", stats.StoreBytes, stats.FetchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := walstore.NewJSONLogger(slog.LevelDebug)
//	b, _ := walstore.New(ctx, store, "wal", "cluster-1", walstore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithIOLimit throttles segment uploads and downloads to bytesPerSec.
// Zero disables throttling.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimitBytesPerSec = bytesPerSec
	}
}

// WithMaxConcurrentTransfers caps the number of Store and FetchSegment calls
// moving data at the same time. Further calls wait for a free slot.
// Zero means unlimited.
func WithMaxConcurrentTransfers(n int64) Option {
	return func(o *options) {
		o.maxConcurrentTransfers = n
	}
}

// WithoutBucketCreation skips creating the bucket in New. Use it when the
// bucket is provisioned separately and the credentials lack CreateBucket.
func WithoutBucketCreation() Option {
	return func(o *options) {
		o.createBucket = false
	}
}

// WithMaxIndexSize bounds the size of a downloaded index blob. Larger blobs
// fail with a DecodeError. Non-positive values restore the default.
func WithMaxIndexSize(bytes int64) Option {
	return func(o *options) {
		if bytes <= 0 {
			bytes = DefaultMaxIndexSize
		}
		o.maxIndexSize = bytes
	}
}

// withFileSystem replaces the local sink. Used by tests to inject faults.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		createBucket:     true,
		maxIndexSize:     DefaultMaxIndexSize,
		fs:               fs.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
