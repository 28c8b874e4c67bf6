package walstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/walstore/internal/resource"
	"github.com/hupe1980/walstore/stream"
)

// throttledSource charges every chunk read against the IO limit.
type throttledSource struct {
	stream.Source
	rc *resource.Controller
}

func (s *throttledSource) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := s.rc.AcquireIO(ctx, len(p)); err != nil {
		return 0, err
	}
	return s.Source.ReadAt(ctx, p, off)
}

// countingReader tracks the position reached in an upload body.
type countingReader struct {
	io.ReadSeekCloser
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.ReadSeekCloser.Read(p)
	r.n += int64(n)
	return n, err
}

func (r *countingReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.ReadSeekCloser.Seek(offset, whence)
	if err == nil {
		r.n = pos
	}
	return pos, err
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// trackingReader remembers the last read error so that download failures can
// be told apart from local write failures.
type trackingReader struct {
	r   io.Reader
	err error
}

func (r *trackingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		r.err = err
	}
	return n, err
}
