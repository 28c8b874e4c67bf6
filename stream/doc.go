// Package stream turns a random-access Source into chunked upload bodies
// that can be restarted from any offset.
//
// A Retryable owns the shared Source and hands out one Body per attempt, so a
// failed upload is retried end-to-end without buffering the segment in memory:
//
//	r := stream.NewRetryable(ctx, stream.NewBytesSource(data))
//	req.Body, _ = r.GetBody()
//	req.GetBody = r.GetBody
//
// SDK clients that rewind request bodies by seeking use Reader instead.
//
// # Body states
//
//	Init ──Next──▶ WaitingChunk ──chunk──▶ Init
//	                    │
//	                    └──empty read / error──▶ Done
//
// A chunk is at most ChunkSize bytes. Each read is issued against the Source
// at the body's own offset, so concurrent bodies never interfere.
package stream
