// Package walstore stores write-ahead-log segments in an object store.
//
// A segment is an immutable, contiguous half-open range of frames
// [start, end) of one namespace. Every segment is kept as two objects: the raw
// data and a sorted index map. Keys encode the frame range so that the
// segment covering any frame is found with a single bounded listing call,
// however long the namespace's history grows.
//
// # Quick Start
//
//	store, _ := s3.NewFromDefaultConfig(ctx, "eu-central-1")
//	b, err := walstore.New(ctx, store, "wal-segments", "cluster-1")
//	if err != nil {
//	    return err
//	}
//
//	// Upload frames [0, 64).
//	err = b.Store(ctx, nil, walstore.SegmentMeta{
//	    Namespace:    "db",
//	    SegmentID:    uuid.New(),
//	    StartFrameNo: 0,
//	    EndFrameNo:   64,
//	    CreatedAt:    time.Now(),
//	}, stream.NewBytesSource(data), indexBytes)
//
//	// Download the segment holding frame 42.
//	idx, err := b.FetchSegment(ctx, nil, "db", 42, "/var/lib/wal/segment")
//
//	// Highest stored frame.
//	meta, err := b.Meta(ctx, nil, "db")
//
// # Object Layout
//
//	ns-{cluster}:{namespace}-v2/segments/{key}
//	ns-{cluster}:{namespace}-v2/indexes/{key}
//
// key is "{MaxUint64-start}-{MaxUint64-end}" with both fields zero-padded to
// 20 digits. Lexicographic order of keys is the reverse of frame order, so a
// listing starting after the complement of a frame yields the segment with
// the largest start not above it first.
//
// # Errors
//
// Failures are reported as *ConfigurationError, *FrameNotFoundError,
// *SegmentGapError, *DecodeError or *BackendError, each matching its
// sentinel with errors.Is. IsRetryable reports transient transport failures.
// No operation retries on its own; upload bodies are rewindable so the
// object store clients can.
package walstore
