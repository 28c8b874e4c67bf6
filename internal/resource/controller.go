package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// minBurst keeps a single upload chunk or copy buffer within one wait.
const minBurst = 64 * 1024

// Config holds resource limits.
type Config struct {
	// IOLimitBytesPerSec is the maximum transfer throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64

	// MaxConcurrentTransfers caps simultaneous Store and FetchSegment calls.
	// If 0, unlimited.
	MaxConcurrentTransfers int64
}

// Controller governs transfer concurrency and IO throughput.
type Controller struct {
	// Concurrency
	transferSem *semaphore.Weighted // nil if unlimited

	// IO
	ioLimiter *rate.Limiter
	burst     int
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{}

	if cfg.MaxConcurrentTransfers > 0 {
		c.transferSem = semaphore.NewWeighted(cfg.MaxConcurrentTransfers)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.burst = int(max(cfg.IOLimitBytesPerSec, minBurst))
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), c.burst)
	}

	return c
}

// AcquireTransfer reserves a transfer slot, blocking until one is free or
// ctx ends.
func (c *Controller) AcquireTransfer(ctx context.Context) error {
	if c == nil || c.transferSem == nil {
		return nil
	}
	return c.transferSem.Acquire(ctx, 1)
}

// ReleaseTransfer releases a transfer slot.
func (c *Controller) ReleaseTransfer() {
	if c == nil || c.transferSem == nil {
		return
	}
	c.transferSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the burst are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	for bytes > 0 {
		n := min(bytes, c.burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
