// Package testutil provides testing utilities for spmv.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random data, arena helpers and a reference
// matrix-vector product over plain triples.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	m := testutil.RandomCOO(t, a, rng, 100, 80, 500, model.Real)
//
// # Reference Product
//
//	want := testutil.ReferenceMulVec(m.M, triples, x)
package testutil
