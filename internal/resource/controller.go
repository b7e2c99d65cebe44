package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/hupe1980/spmv/internal/errs"
)

// ErrMemoryLimitExceeded is returned when the memory budget would be exceeded.
// It matches errs.ErrOutOfMemory.
var ErrMemoryLimitExceeded = errs.New(errs.OutOfMemory, "resource", "memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for arena memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxPublishers is the maximum number of sinks written concurrently.
	// If 0, defaults to 1.
	MaxPublishers int64

	// IOLimitBytesPerSec is the maximum throughput for report uploads.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages global resources (memory, publish concurrency, IO).
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	pubSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxPublishers <= 0 {
		cfg.MaxPublishers = 1
	}

	c := &Controller{
		cfg:    cfg,
		pubSem: semaphore.NewWeighted(cfg.MaxPublishers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory reserves bytes from the budget.
// Non-blocking: returns ErrMemoryLimitExceeded if the limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns bytes to the budget.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current reserved memory in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquirePublisher reserves a publish slot, blocking while all are busy.
func (c *Controller) AcquirePublisher(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.pubSem.Acquire(ctx, 1)
}

// ReleasePublisher releases a publish slot.
func (c *Controller) ReleasePublisher() {
	if c == nil {
		return
	}
	c.pubSem.Release(1)
}

// MaxPublishers returns the number of publish slots.
func (c *Controller) MaxPublishers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxPublishers)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the burst are split into burst-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
