// Package arena provides the bump-pointer memory arena that backs every
// vector and matrix in spmv.
//
// # Memory Model
//
// An Arena owns a single contiguous buffer of fixed capacity, obtained from
// an anonymous memory mapping (off-heap, no GC scanning) or from the heap.
// Alloc bumps an offset and returns a Handle describing the allocation
// (offset, element size, count). Handles are resolved to slices with Bytes or
// View; they never carry raw addresses.
//
// Memory is never released individually. Free tears the whole arena down in
// one shot; Reset rewinds it for reuse. Both bump the arena generation so
// that stale handles are detected instead of aliasing new data.
//
// # Restrictions
//
//   - Stored element types must be pointer-free (ints, floats, and structs of them).
//   - An Arena is single-writer: allocate from one goroutine during setup.
//     Resolved views may be read and written concurrently by callers that
//     partition them.
package arena
