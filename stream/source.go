package stream

import (
	"bytes"
	"context"
	"io"
	"os"
)

// Source is positional, read-only segment data. ReadAt must be safe for
// concurrent use; it follows io.ReaderAt semantics otherwise.
type Source interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// Len reports the total length if it is known.
	Len() (int64, bool)
}

type readerAtSource struct {
	r    io.ReaderAt
	size int64
}

// NewReaderAtSource adapts r. A negative size means unknown.
func NewReaderAtSource(r io.ReaderAt, size int64) Source {
	return &readerAtSource{r: r, size: size}
}

// NewBytesSource serves data from memory. data must not be modified while
// the source is in use.
func NewBytesSource(data []byte) Source {
	return &readerAtSource{r: bytes.NewReader(data), size: int64(len(data))}
}

// StatReaderAt is implemented by *os.File.
type StatReaderAt interface {
	io.ReaderAt
	Stat() (os.FileInfo, error)
}

// NewFileSource serves f, using its current size as the length.
func NewFileSource(f StatReaderAt) (Source, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &readerAtSource{r: f, size: info.Size()}, nil
}

func (s *readerAtSource) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.r.ReadAt(p, off)
}

func (s *readerAtSource) Len() (int64, bool) {
	if s.size < 0 {
		return 0, false
	}
	return s.size, true
}
