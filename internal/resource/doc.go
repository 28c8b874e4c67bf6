// Package resource governs transfer concurrency and IO throughput.
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec:     100 * 1024 * 1024, // 100MB/s
//	    MaxConcurrentTransfers: 4,
//	})
//
//	if err := rc.AcquireTransfer(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseTransfer()
//
//	reader := resource.NewRateLimitedReader(ctx, body, rc)
//
// The IO limiter is a token bucket whose burst is at least 64KiB, so chunked
// uploads and buffered copies are throttled smoothly. The controller never
// retries; a canceled context surfaces as the wait error.
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
