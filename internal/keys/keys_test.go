package keys

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentKey_String(t *testing.T) {
	k := SegmentKey{StartFrameNo: 0, EndFrameNo: 64}
	assert.Equal(t, "18446744073709551615-18446744073709551551", k.String())

	k = SegmentKey{StartFrameNo: math.MaxUint64, EndFrameNo: math.MaxUint64}
	assert.Equal(t, "00000000000000000000-00000000000000000000", k.String())

	// Complements below 10^19 are zero padded and keep the same length.
	k = SegmentKey{StartFrameNo: math.MaxUint64 - 42, EndFrameNo: math.MaxUint64 - 7}
	assert.Equal(t, "00000000000000000042-00000000000000000007", k.String())
	assert.Len(t, k.String(), encodedLen)
}

func TestParse_RoundTrip(t *testing.T) {
	edges := []SegmentKey{
		{0, 0},
		{0, 1},
		{0, math.MaxUint64},
		{math.MaxUint64 - 1, math.MaxUint64},
		{math.MaxUint64, math.MaxUint64},
		{1 << 32, 1<<32 + 4096},
		{8446744073709551615, 8446744073709551616},
	}
	for _, k := range edges {
		got, err := Parse(k.String())
		require.NoError(t, err, k.String())
		assert.Equal(t, k, got)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		s, e := rng.Uint64(), rng.Uint64()
		if s > e {
			s, e = e, s
		}
		k := SegmentKey{StartFrameNo: s, EndFrameNo: e}
		got, err := Parse(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
}

func TestSegmentKey_OrderReversal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 10000; i++ {
		s1, s2 := rng.Uint64(), rng.Uint64()
		if s1 == s2 {
			continue
		}
		if s1 > s2 {
			s1, s2 = s2, s1
		}
		a := SegmentKey{StartFrameNo: s1, EndFrameNo: rng.Uint64()}.String()
		b := SegmentKey{StartFrameNo: s2, EndFrameNo: rng.Uint64()}.String()
		require.Greater(t, a, b, "start %d should sort after start %d", s1, s2)
	}

	// Same start: the larger end sorts first.
	a := SegmentKey{StartFrameNo: 101, EndFrameNo: 500}.String()
	b := SegmentKey{StartFrameNo: 101, EndFrameNo: 1000}.String()
	assert.Greater(t, a, b)
}

func TestParse_Invalid(t *testing.T) {
	valid := SegmentKey{StartFrameNo: 1, EndFrameNo: 2}.String()

	cases := map[string]string{
		"empty":         "",
		"short":         valid[:encodedLen-1],
		"long":          valid + "0",
		"19 digits":     "0000000000000000001-0000000000000000002",
		"bad separator": strings.Replace(valid, "-", "_", 1),
		"non digit":     "x" + valid[1:],
		"sign":          "+" + valid[1:],
		"overflow":      "99999999999999999999-" + valid[FieldWidth+1:],
		"trailing path": valid[:encodedLen-1] + "/",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrInvalidKeyFormat)
		})
	}
}

func TestFolderAndObjectKeys(t *testing.T) {
	folder := FolderKey{ClusterID: "123456789", Namespace: "foobarbaz"}
	seg := SegmentKey{StartFrameNo: 0, EndFrameNo: 64}

	assert.Equal(t, "ns-123456789:foobarbaz-v2", folder.String())
	assert.Equal(t, "ns-123456789:foobarbaz-v2/segments/18446744073709551615-18446744073709551551", DataKey(folder, seg))
	assert.Equal(t, "ns-123456789:foobarbaz-v2/indexes/18446744073709551615-18446744073709551551", IndexKey(folder, seg))
	assert.Equal(t, "ns-123456789:foobarbaz-v2/indexes/", IndexPrefix(folder))
	assert.Equal(t, "ns-123456789:foobarbaz-v2/indexes/18446744073709551614", LookupKey(folder, 1))
	assert.Equal(t, "ns-123456789:foobarbaz-v2/indexes/00000000000000000000", LookupKey(folder, math.MaxUint64))

	got, err := ParseObjectKey(IndexKey(folder, seg))
	require.NoError(t, err)
	assert.Equal(t, seg, got)
}

// The first stored index key sorting strictly after the lookup key belongs to
// the segment with the largest start not exceeding the frame.
func TestLookupKey_ForwardScan(t *testing.T) {
	folder := FolderKey{ClusterID: "c", Namespace: "db"}
	segs := []SegmentKey{{1, 100}, {101, 500}, {101, 1000}, {1000, 2000}}

	stored := make([]string, 0, len(segs))
	for _, s := range segs {
		stored = append(stored, IndexKey(folder, s))
	}
	sort.Strings(stored)

	first := func(frameNo uint64) (SegmentKey, bool) {
		anchor := LookupKey(folder, frameNo)
		i := sort.Search(len(stored), func(i int) bool { return stored[i] > anchor })
		if i == len(stored) {
			return SegmentKey{}, false
		}
		k, err := ParseObjectKey(stored[i])
		require.NoError(t, err)
		return k, true
	}

	k, ok := first(50)
	require.True(t, ok)
	assert.Equal(t, SegmentKey{1, 100}, k)

	k, ok = first(101)
	require.True(t, ok)
	assert.Equal(t, SegmentKey{101, 1000}, k)

	k, ok = first(1500)
	require.True(t, ok)
	assert.Equal(t, SegmentKey{1000, 2000}, k)

	k, ok = first(math.MaxUint64)
	require.True(t, ok)
	assert.Equal(t, SegmentKey{1000, 2000}, k)

	_, ok = first(0)
	assert.False(t, ok)
}

func TestSegmentKey_Includes(t *testing.T) {
	k := SegmentKey{StartFrameNo: 64, EndFrameNo: 128}
	assert.False(t, k.Includes(63))
	assert.True(t, k.Includes(64))
	assert.True(t, k.Includes(127))
	assert.False(t, k.Includes(128))
	assert.False(t, SegmentKey{5, 5}.Includes(5))
}
