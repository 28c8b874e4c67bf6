package stream

import (
	"context"
	"errors"
	"io"
)

// ChunkSize is the maximum size of a chunk produced by Body.
const ChunkSize = 4096

type state int

const (
	stateInit state = iota
	stateWaiting
	stateDone
)

type readResult struct {
	buf []byte
	n   int
	err error
}

// Body is a single upload attempt over a Source. It is not safe for
// concurrent use.
type Body struct {
	src    Source
	ctx    context.Context
	cancel context.CancelFunc

	off     int64
	state   state
	pending chan readResult

	leftover []byte
}

var _ io.ReadCloser = (*Body)(nil)

func newBody(ctx context.Context, src Source, off int64) *Body {
	ctx, cancel := context.WithCancel(ctx)
	return &Body{
		src:    src,
		ctx:    ctx,
		cancel: cancel,
		off:    off,
	}
}

// Len reports the length of the underlying source if it is known.
func (b *Body) Len() (int64, bool) {
	return b.src.Len()
}

// Next returns the next chunk. It returns io.EOF once the source is
// exhausted. A read error is returned once and ends the body.
//
// If ctx ends while a read is in flight, Next returns ctx.Err() and the read
// stays pending; the following call resumes waiting for it.
func (b *Body) Next(ctx context.Context) ([]byte, error) {
	switch b.state {
	case stateDone:
		return nil, io.EOF
	case stateInit:
		b.start()
	}

	select {
	case res := <-b.pending:
		b.pending = nil
		return b.complete(res)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Body) start() {
	buf := make([]byte, ChunkSize)
	ch := make(chan readResult, 1)
	ctx, src, off := b.ctx, b.src, b.off

	go func() {
		n, err := src.ReadAt(ctx, buf, off)
		ch <- readResult{buf: buf, n: n, err: err}
	}()

	b.pending = ch
	b.state = stateWaiting
}

func (b *Body) complete(res readResult) ([]byte, error) {
	if res.err != nil && !errors.Is(res.err, io.EOF) {
		b.finish()
		return nil, res.err
	}
	if res.n == 0 {
		b.finish()
		return nil, io.EOF
	}

	b.off += int64(res.n)
	b.state = stateInit
	return res.buf[:res.n], nil
}

func (b *Body) finish() {
	b.state = stateDone
	b.cancel()
}

// Read implements io.Reader on top of Next.
func (b *Body) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(b.leftover) == 0 {
		chunk, err := b.Next(b.ctx)
		if err != nil {
			return 0, err
		}
		b.leftover = chunk
	}

	n := copy(p, b.leftover)
	b.leftover = b.leftover[n:]
	return n, nil
}

// Close abandons any in-flight read and ends the body.
func (b *Body) Close() error {
	b.pending = nil
	b.leftover = nil
	b.finish()
	return nil
}
