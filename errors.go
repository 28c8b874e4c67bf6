package walstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/walstore/blobstore"
	"github.com/hupe1980/walstore/index"
	"github.com/hupe1980/walstore/internal/keys"
)

var (
	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrFrameNotFound is matched by every FrameNotFoundError.
	ErrFrameNotFound = errors.New("frame not found")

	// ErrSegmentGap is matched by every SegmentGapError.
	ErrSegmentGap = errors.New("frame not covered by any segment")

	// ErrDecode is matched by every DecodeError.
	ErrDecode = errors.New("decode error")

	// ErrUnhandledBackend is matched by every BackendError.
	ErrUnhandledBackend = errors.New("unhandled backend error")

	// ErrInvalidArgument is returned for malformed call arguments.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ConfigurationError indicates that the backend could not be set up, e.g.
// the bucket could not be created.
//
// The original underlying error can be accessed via errors.Unwrap.
type ConfigurationError struct {
	Bucket string
	cause  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: bucket %q: %v", e.Bucket, e.cause)
}

func (e *ConfigurationError) Unwrap() error { return e.cause }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// FrameNotFoundError indicates that no stored segment starts at or below the
// frame, or that the located segment is incomplete.
type FrameNotFoundError struct {
	Namespace string
	FrameNo   uint64
	cause     error
}

func (e *FrameNotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("frame %d not found in namespace %q: %v", e.FrameNo, e.Namespace, e.cause)
	}
	return fmt.Sprintf("frame %d not found in namespace %q", e.FrameNo, e.Namespace)
}

func (e *FrameNotFoundError) Unwrap() error { return e.cause }

func (e *FrameNotFoundError) Is(target error) bool { return target == ErrFrameNotFound }

// SegmentGapError indicates that the closest segment below the frame does
// not contain it.
type SegmentGapError struct {
	Namespace    string
	FrameNo      uint64
	StartFrameNo uint64
	EndFrameNo   uint64
}

func (e *SegmentGapError) Error() string {
	return fmt.Sprintf("frame %d in namespace %q falls into a gap after segment [%d, %d)",
		e.FrameNo, e.Namespace, e.StartFrameNo, e.EndFrameNo)
}

func (e *SegmentGapError) Is(target error) bool { return target == ErrSegmentGap }

// DecodeError indicates an undecodable object key or index blob.
//
// The original underlying error can be accessed via errors.Unwrap.
type DecodeError struct {
	// Kind is "segment key" or "index".
	Kind  string
	Key   string
	cause error
}

func (e *DecodeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("decode %s %q: %v", e.Kind, e.Key, e.cause)
	}
	return fmt.Sprintf("decode %s: %v", e.Kind, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// BackendError wraps any other failure of the object store or local sink.
//
// The original underlying error can be accessed via errors.Unwrap.
type BackendError struct {
	Op        string
	Retryable bool
	cause     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.cause)
}

func (e *BackendError) Unwrap() error { return e.cause }

func (e *BackendError) Is(target error) bool { return target == ErrUnhandledBackend }

// IsRetryable reports whether err is a transient backend failure.
func IsRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return blobstore.IsRetryable(err)
}

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	// Already classified.
	var (
		ce  *ConfigurationError
		nf  *FrameNotFoundError
		gap *SegmentGapError
		de  *DecodeError
		be  *BackendError
	)
	if errors.As(err, &ce) || errors.As(err, &nf) || errors.As(err, &gap) ||
		errors.As(err, &de) || errors.As(err, &be) || errors.Is(err, ErrInvalidArgument) {
		return err
	}

	// Decoding.
	if errors.Is(err, keys.ErrInvalidKeyFormat) {
		return &DecodeError{Kind: "segment key", cause: err}
	}
	if errors.Is(err, index.ErrCorrupt) {
		return &DecodeError{Kind: "index", cause: err}
	}

	retryable := blobstore.IsRetryable(err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		retryable = false
	}
	return &BackendError{Op: op, Retryable: retryable, cause: err}
}
