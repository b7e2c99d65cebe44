// Package sched provides a persistent worker pool and the loop scheduling
// policies used to split row ranges across its workers.
//
// A Pool owns a fixed set of goroutines. For hands every worker the same
// Policy-driven partition of [0, n) and returns once all claimed ranges were
// processed, so the call acts as a barrier. Steady-state calls do not
// allocate.
package sched
