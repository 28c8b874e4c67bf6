// Package locator finds the segment covering a frame with one bounded listing.
package locator

import (
	"context"
	"math"

	"github.com/hupe1980/walstore/internal/keys"
)

// Lister is the listing capability of the object store.
// Entries are returned in ascending key order.
type Lister interface {
	ListAfter(ctx context.Context, bucket, prefix, startAfter string, limit int) ([]string, error)
}

// Locator resolves frame numbers to segment keys.
type Locator struct {
	lister Lister
}

// New creates a Locator backed by lister.
func New(lister Lister) *Locator {
	return &Locator{lister: lister}
}

// FindSegment returns the segment with the largest start frame not exceeding
// frameNo, using exactly one listing call regardless of how many segments the
// folder holds.
//
// The result is not a containment check: when no stored range covers frameNo
// the returned segment may end at or before frameNo. Callers must check
// SegmentKey.Includes. ok is false when the folder has no segment starting at
// or below frameNo.
func (l *Locator) FindSegment(ctx context.Context, bucket string, folder keys.FolderKey, frameNo uint64) (seg keys.SegmentKey, ok bool, err error) {
	entries, err := l.lister.ListAfter(ctx, bucket, keys.IndexPrefix(folder), keys.LookupKey(folder, frameNo), 1)
	if err != nil {
		return keys.SegmentKey{}, false, err
	}
	if len(entries) == 0 {
		return keys.SegmentKey{}, false, nil
	}

	seg, err = keys.ParseObjectKey(entries[0])
	if err != nil {
		return keys.SegmentKey{}, false, err
	}
	return seg, true, nil
}

// Meta returns the end frame of the segment with the highest start frame, or
// zero when the folder is empty.
func (l *Locator) Meta(ctx context.Context, bucket string, folder keys.FolderKey) (uint64, error) {
	// Complement of MaxUint64 is zero, so every stored key sorts after the anchor.
	seg, ok, err := l.FindSegment(ctx, bucket, folder, math.MaxUint64)
	if err != nil || !ok {
		return 0, err
	}
	return seg.EndFrameNo, nil
}
