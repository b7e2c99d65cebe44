package testutil

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/coo"
	"github.com/hupe1980/spmv/model"
	"github.com/hupe1980/spmv/vector"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a non-negative pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Int64Range returns a pseudo-random number in [lo, hi].
func (r *RNG) Int64Range(lo, hi int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rand.Int64N(hi-lo+1)
}

// Rand derives an independent generator for APIs that take a *rand.Rand.
func (r *RNG) Rand() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rand.New(rand.NewPCG(r.rand.Uint64(), r.rand.Uint64()))
}

// NewArena returns a heap-backed arena that is freed when the test ends.
func NewArena(tb testing.TB, capacity int) *arena.Arena {
	tb.Helper()
	a, err := arena.New(capacity, arena.WithHeap())
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = a.Free() })
	return a
}

// RandomCOO builds an m x n coordinate matrix with nz uniformly placed
// triples. Positions may repeat. Real values lie in [-10, 10), integer
// values in [-10, 10].
func RandomCOO(tb testing.TB, a *arena.Arena, rng *RNG, m, n, nz int, kind model.Kind) *coo.Matrix {
	tb.Helper()

	b, err := coo.NewBuilder(a, m, n, nz, kind)
	require.NoError(tb, err)
	for range nz {
		row, col := rng.IntN(m), rng.IntN(n)
		if kind == model.Real {
			require.NoError(tb, b.AddReal(row, col, rng.Float64()*20-10))
		} else {
			require.NoError(tb, b.AddInteger(row, col, rng.Int64Range(-10, 10)))
		}
	}
	mtx, err := b.Build()
	require.NoError(tb, err)
	return mtx
}

// RandomVector returns a vector of n elements filled like RandomCOO values.
func RandomVector(tb testing.TB, a *arena.Arena, rng *RNG, n int, kind model.Kind) *vector.Vector {
	tb.Helper()

	v, err := vector.New(a, n, kind)
	require.NoError(tb, err)
	require.NoError(tb, v.RandomFill(rng.Rand(), -10, 10))
	return v
}

// Triples copies all entries of m.
func Triples(tb testing.TB, m *coo.Matrix) []coo.Triple {
	tb.Helper()

	out := make([]coo.Triple, 0, m.NZ)
	require.NoError(tb, m.Triples(func(t coo.Triple) bool {
		out = append(out, t)
		return true
	}))
	return out
}

// ReferenceMulVecReal computes y = A*x over plain triples.
func ReferenceMulVecReal(rows int, triples []coo.Triple, x []float64) []float64 {
	y := make([]float64, rows)
	for _, t := range triples {
		y[t.Row] += t.Real * x[t.Col]
	}
	return y
}

// ReferenceMulVecInteger computes y = A*x over plain triples with
// wrap-around int64 arithmetic.
func ReferenceMulVecInteger(rows int, triples []coo.Triple, x []int64) []int64 {
	y := make([]int64, rows)
	for _, t := range triples {
		y[t.Row] += t.Integer * x[t.Col]
	}
	return y
}

// RelativeError returns |got-want| / max(1, |want|).
func RelativeError(got, want float64) float64 {
	return math.Abs(got-want) / math.Max(1, math.Abs(want))
}
