package keys

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldWidth is the number of decimal digits of each complement field.
// MaxUint64 has 20 digits, so every complement fits without changing length.
const FieldWidth = 20

// encodedLen is the length of an encoded SegmentKey: two fields and a separator.
const encodedLen = 2*FieldWidth + 1

const (
	separator  = '-'
	segmentDir = "/segments/"
	indexDir   = "/indexes/"
)

// ErrInvalidKeyFormat is returned when a string is not a valid encoded SegmentKey.
var ErrInvalidKeyFormat = errors.New("invalid segment key format")

// SegmentKey identifies a segment by its half-open frame range.
type SegmentKey struct {
	StartFrameNo uint64
	EndFrameNo   uint64
}

// Includes reports whether frameNo lies in [StartFrameNo, EndFrameNo).
func (k SegmentKey) Includes(frameNo uint64) bool {
	return frameNo >= k.StartFrameNo && frameNo < k.EndFrameNo
}

// String returns the fixed-width, order-reversing encoding of k.
func (k SegmentKey) String() string {
	b := make([]byte, 0, encodedLen)
	b = appendComplement(b, k.StartFrameNo)
	b = append(b, separator)
	b = appendComplement(b, k.EndFrameNo)
	return string(b)
}

// Parse decodes a string produced by SegmentKey.String.
func Parse(s string) (SegmentKey, error) {
	if len(s) != encodedLen || s[FieldWidth] != separator {
		return SegmentKey{}, fmt.Errorf("%w: %q", ErrInvalidKeyFormat, s)
	}

	start, err := parseComplement(s[:FieldWidth])
	if err != nil {
		return SegmentKey{}, fmt.Errorf("%w: %q: %w", ErrInvalidKeyFormat, s, err)
	}
	end, err := parseComplement(s[FieldWidth+1:])
	if err != nil {
		return SegmentKey{}, fmt.Errorf("%w: %q: %w", ErrInvalidKeyFormat, s, err)
	}

	return SegmentKey{StartFrameNo: start, EndFrameNo: end}, nil
}

// ParseObjectKey decodes the SegmentKey held in the last path element of an
// object key, e.g. "ns-c:db-v2/indexes/18446744073709551615-18446744073709551551".
func ParseObjectKey(objectKey string) (SegmentKey, error) {
	name := objectKey
	if i := strings.LastIndexByte(objectKey, '/'); i >= 0 {
		name = objectKey[i+1:]
	}
	return Parse(name)
}

// FolderKey is the stable path prefix of one (cluster, namespace) pair.
type FolderKey struct {
	ClusterID string
	Namespace string
}

func (f FolderKey) String() string {
	return "ns-" + f.ClusterID + ":" + f.Namespace + "-v2"
}

// DataKey returns the object key holding the raw bytes of a segment.
func DataKey(folder FolderKey, seg SegmentKey) string {
	return folder.String() + segmentDir + seg.String()
}

// IndexKey returns the object key holding the sorted index blob of a segment.
func IndexKey(folder FolderKey, seg SegmentKey) string {
	return folder.String() + indexDir + seg.String()
}

// IndexPrefix returns the prefix shared by every index key of folder.
func IndexPrefix(folder FolderKey) string {
	return folder.String() + indexDir
}

// LookupKey returns the scan anchor used to locate the segment covering
// frameNo. It is a partial key and never names a stored object.
func LookupKey(folder FolderKey, frameNo uint64) string {
	return string(appendComplement([]byte(IndexPrefix(folder)), frameNo))
}

func appendComplement(dst []byte, v uint64) []byte {
	var digits [FieldWidth]byte
	for i := range digits {
		digits[i] = '0'
	}
	s := strconv.AppendUint(nil, math.MaxUint64-v, 10)
	copy(digits[FieldWidth-len(s):], s)
	return append(dst, digits[:]...)
}

func parseComplement(field string) (uint64, error) {
	for i := 0; i < len(field); i++ {
		if field[i] < '0' || field[i] > '9' {
			return 0, fmt.Errorf("non-digit byte %q at %d", field[i], i)
		}
	}
	c, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0, err
	}
	return math.MaxUint64 - c, nil
}
