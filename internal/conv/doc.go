// Package conv provides safe integer conversion and arithmetic utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between signed/unsigned and different bit-width integer types,
// or when sizing allocations from untrusted counts.
//
// Use cases:
//   - Validating untrusted data from disk (Matrix Market size lines)
//   - Sizing arena allocations (element size × count)
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
