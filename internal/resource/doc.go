// Package resource implements the Controller for process-wide limits.
//
// The Controller manages three resource types:
//
//   - Memory: a budget that arenas reserve their capacity against (fail-fast)
//   - Publish slots: how many report sinks are written concurrently
//   - IO: a token bucket throttling report uploads
//
// # Memory
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. AcquireMemory never blocks:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	if err := rc.AcquireMemory(size); err != nil {
//	    // errors.Is(err, errs.ErrOutOfMemory)
//	}
//	defer rc.ReleaseMemory(size)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
