package index

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/blevesearch/vellum"
)

var (
	// ErrCorrupt is returned when an index blob cannot be decoded.
	ErrCorrupt = errors.New("index: corrupt index map")

	// ErrOutOfOrder is returned by Builder.Insert for a key that does not
	// sort after the previous one.
	ErrOutOfOrder = errors.New("index: keys out of order")
)

// Map is a read-only sorted map from keys to uint64 values.
// It is safe for concurrent use.
type Map struct {
	fst *vellum.FST
}

// Parse decodes data. The whole map is walked once, so a Map returned
// without error can be read without decoding failures. data must not be
// modified while the Map is in use.
func Parse(data []byte) (m *Map, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorrupt)
	}

	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	fst, err := vellum.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	m = &Map{fst: fst}
	n := 0
	if err := m.Range(func([]byte, uint64) bool { n++; return true }); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if n != fst.Len() {
		return nil, fmt.Errorf("%w: %d entries, header says %d", ErrCorrupt, n, fst.Len())
	}
	return m, nil
}

// Get returns the value stored for key.
func (m *Map) Get(key []byte) (uint64, bool, error) {
	return m.fst.Get(key)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return m.fst.Len()
}

// Range calls fn for every entry in key order until fn returns false.
// The key slice is only valid during the call.
func (m *Map) Range(fn func(key []byte, val uint64) bool) error {
	return m.RangeFrom(nil, fn)
}

// RangeFrom is like Range but starts at the first key >= start.
func (m *Map) RangeFrom(start []byte, fn func(key []byte, val uint64) bool) error {
	it, err := m.fst.Iterator(start, nil)
	for err == nil {
		key, val := it.Current()
		if !fn(key, val) {
			return nil
		}
		err = it.Next()
	}
	if errors.Is(err, vellum.ErrIteratorDone) {
		return nil
	}
	return err
}

// Close releases the map.
func (m *Map) Close() error {
	return m.fst.Close()
}

// Builder encodes a Map. Keys must be inserted in strictly increasing order.
type Builder struct {
	buf     bytes.Buffer
	builder *vellum.Builder
	last    []byte
	started bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() (*Builder, error) {
	b := &Builder{}
	vb, err := vellum.New(&b.buf, nil)
	if err != nil {
		return nil, err
	}
	b.builder = vb
	return b, nil
}

// Insert adds key with val.
func (b *Builder) Insert(key []byte, val uint64) error {
	if b.started && bytes.Compare(key, b.last) <= 0 {
		return fmt.Errorf("%w: %q after %q", ErrOutOfOrder, key, b.last)
	}
	if err := b.builder.Insert(key, val); err != nil {
		return err
	}
	b.last = append(b.last[:0], key...)
	b.started = true
	return nil
}

// Bytes finishes the map and returns its encoding. The Builder cannot be
// used afterwards.
func (b *Builder) Bytes() ([]byte, error) {
	if err := b.builder.Close(); err != nil {
		return nil, err
	}
	return b.buf.Bytes(), nil
}

// Encode builds a map from entries, which need not be sorted.
func Encode(entries map[string]uint64) ([]byte, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	b, err := NewBuilder()
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := b.Insert([]byte(k), entries[k]); err != nil {
			return nil, err
		}
	}
	return b.Bytes()
}
