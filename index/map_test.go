package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndParse(t *testing.T) {
	entries := map[string]uint64{
		"a":       1,
		"ab":      2,
		"b":       3,
		"page-42": 4096 * 42,
	}
	data, err := Encode(entries)
	require.NoError(t, err)

	m, err := Parse(data)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(entries), m.Len())
	for k, want := range entries {
		got, ok, err := m.Get([]byte(k))
		require.NoError(t, err)
		assert.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}

	_, ok, err := m.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRange(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, b.Insert([]byte(fmt.Sprintf("key-%03d", i)), uint64(i)))
	}
	data, err := b.Bytes()
	require.NoError(t, err)

	m, err := Parse(data)
	require.NoError(t, err)

	var keys []string
	var vals []uint64
	require.NoError(t, m.Range(func(k []byte, v uint64) bool {
		keys = append(keys, string(k))
		vals = append(vals, v)
		return true
	}))
	require.Len(t, keys, 100)
	assert.Equal(t, "key-000", keys[0])
	assert.Equal(t, "key-099", keys[99])
	assert.Equal(t, uint64(99), vals[99])

	var first string
	require.NoError(t, m.RangeFrom([]byte("key-050"), func(k []byte, _ uint64) bool {
		first = string(k)
		return false
	}))
	assert.Equal(t, "key-050", first)
}

func TestEmptyMap(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)

	m, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	called := false
	require.NoError(t, m.Range(func([]byte, uint64) bool { called = true; return true }))
	assert.False(t, called)
}

func TestBuilder_OutOfOrder(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)
	require.NoError(t, b.Insert([]byte("b"), 1))
	assert.ErrorIs(t, b.Insert([]byte("a"), 2), ErrOutOfOrder)
	assert.ErrorIs(t, b.Insert([]byte("b"), 2), ErrOutOfOrder)
}

func TestParse_Corrupt(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Parse([]byte("not an index"))
	assert.ErrorIs(t, err, ErrCorrupt)
}
