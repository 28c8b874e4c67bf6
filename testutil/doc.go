// Package testutil provides testing utilities for walstore.
//
// This package is intended for use in tests only.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	segment := rng.Bytes(10_000)
//	start, end := rng.FrameRange(1 << 20)
//
// # Fault Injection
//
// FaultyStore wraps any blobstore.ObjectStore and fails selected operations:
//
//	store := testutil.NewFaultyStore(blobstore.NewMemoryStore())
//	store.FailN(testutil.OpList, "indexes/", 1, errBoom)
//	store.Fail(testutil.OpRead, "segments/", io.ErrUnexpectedEOF)
package testutil
