package stream

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrUnknownLength is returned when seeking relative to the end of a
	// source whose length is unknown.
	ErrUnknownLength = errors.New("stream: source length unknown")

	// ErrNegativeOffset is returned by Seek for positions before the start.
	ErrNegativeOffset = errors.New("stream: negative offset")
)

// Retryable produces independent upload attempts over one shared Source.
type Retryable struct {
	ctx context.Context
	src Source
}

// NewRetryable creates a Retryable. Bodies stop reading when ctx ends.
func NewRetryable(ctx context.Context, src Source) *Retryable {
	return &Retryable{ctx: ctx, src: src}
}

// Len reports the length of the source if it is known.
func (r *Retryable) Len() (int64, bool) {
	return r.src.Len()
}

// NewBody starts a fresh attempt at offset zero.
func (r *Retryable) NewBody() *Body {
	return newBody(r.ctx, r.src, 0)
}

// GetBody matches http.Request.GetBody.
func (r *Retryable) GetBody() (io.ReadCloser, error) {
	return r.NewBody(), nil
}

// Reader returns a seekable view. Every repositioning Seek starts a new
// attempt at the target offset.
func (r *Retryable) Reader() *Reader {
	return &Reader{r: r}
}

// Reader is an io.ReadSeekCloser over a Retryable.
type Reader struct {
	r    *Retryable
	body *Body
	pos  int64
}

var _ io.ReadSeekCloser = (*Reader)(nil)

func (rd *Reader) Read(p []byte) (int, error) {
	if rd.body == nil {
		rd.body = newBody(rd.r.ctx, rd.r.src, rd.pos)
	}
	n, err := rd.body.Read(p)
	rd.pos += int64(n)
	return n, err
}

func (rd *Reader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		if offset == 0 {
			return rd.pos, nil
		}
		abs = rd.pos + offset
	case io.SeekEnd:
		size, ok := rd.r.src.Len()
		if !ok {
			return 0, ErrUnknownLength
		}
		abs = size + offset
	default:
		return 0, errors.New("stream: invalid whence")
	}
	if abs < 0 {
		return 0, ErrNegativeOffset
	}

	if rd.body != nil {
		_ = rd.body.Close()
		rd.body = nil
	}
	rd.pos = abs
	return abs, nil
}

// Close ends the current attempt. HTTP transports close request bodies after
// each try, so a later Read or Seek starts a new attempt at the current position.
func (rd *Reader) Close() error {
	if rd.body == nil {
		return nil
	}
	err := rd.body.Close()
	rd.body = nil
	return err
}
