// Package keys encodes segment and folder identifiers into object-store paths.
//
// # Layout
//
//	{folder}/segments/{segmentKey}   raw segment bytes
//	{folder}/indexes/{segmentKey}    sorted index blob
//
//	folder     = "ns-{clusterID}:{namespace}-v2"
//	segmentKey = "{MaxUint64-start:020d}-{MaxUint64-end:020d}"
//
// Both frame numbers are stored as their complement against math.MaxUint64 and
// zero-padded to a fixed width. Ascending string order is therefore descending
// numeric order, which lets a single forward listing starting after
// LookupKey(folder, n) land on the segment with the largest start frame that is
// not greater than n.
package keys
