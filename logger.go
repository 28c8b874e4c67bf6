package walstore

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/walstore/internal/keys"
)

// Logger wraps slog.Logger with walstore-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithNamespace adds a namespace field to the logger.
func (l *Logger) WithNamespace(namespace string) *Logger {
	return &Logger{
		Logger: l.Logger.With("namespace", namespace),
	}
}

// WithSegment adds the frame range of a segment to the logger.
func (l *Logger) WithSegment(startFrameNo, endFrameNo uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("start_frame_no", startFrameNo, "end_frame_no", endFrameNo),
	}
}

// LogStore logs a segment upload.
func (l *Logger) LogStore(ctx context.Context, segmentID uuid.UUID, bytes int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store failed",
			"segment_id", segmentID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "store completed",
			"segment_id", segmentID,
			"bytes", bytes,
			"duration", duration,
		)
	}
}

// LogFetch logs a segment download. seg is the zero key when the lookup
// did not get that far.
func (l *Logger) LogFetch(ctx context.Context, frameNo uint64, seg keys.SegmentKey, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fetch failed",
			"frame_no", frameNo,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "fetch completed",
			"frame_no", frameNo,
			"segment", seg.String(),
			"duration", duration,
		)
	}
}

// LogMeta logs a metadata lookup.
func (l *Logger) LogMeta(ctx context.Context, maxFrameNo uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "meta failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "meta completed",
			"max_frame_no", maxFrameNo,
		)
	}
}
