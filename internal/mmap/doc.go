// Package mmap provides memory mappings for arena buffers and input files.
//
// # Usage
//
//	m, err := mmap.Open("matrix.mtx")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AdviceSequential)
//	data := m.Bytes() // zero-copy file contents
//
// # Anonymous Mappings
//
// MapAnon creates zeroed read-write mappings outside the Go heap. The arena
// uses them so that large matrices add no GC scanning work. Memory obtained
// this way must only hold pointer-free data.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) hints
//   - Other platforms: heap-backed fallback; Advise is a no-op
//
// Close is idempotent. Nothing may read Bytes() after Close returns.
package mmap
