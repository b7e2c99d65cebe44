// Package bench times repeated calls of a kernel and summarizes the samples.
//
// Run performs Warmup untimed calls followed by Runs timed calls. Each sample
// is measured with a monotonic clock and truncated to microseconds. The
// Result carries the samples together with their mean, population standard
// deviation, minimum and maximum.
package bench
