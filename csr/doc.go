// Package csr implements the compressed sparse row format, its construction
// from coordinate triples and the row-parallel matrix-vector product.
//
// Conversion runs in three O(m+nz) passes over the coordinate arrays: a row
// histogram, an exclusive prefix sum into the row pointer array, and a
// scatter through a separate per-row cursor array so that the row pointers
// stay untouched while entries are placed.
//
// The product y = A*x is computed row by row. A Multiplier distributes rows
// over a persistent worker pool using a sched.Policy; every row is summed by a
// single worker, so results do not depend on the thread count.
package csr
