package csr

import (
	"sync"

	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/internal/sched"
	"github.com/hupe1980/spmv/model"
	"github.com/hupe1980/spmv/vector"
)

// rowKernel computes y[i] = sum(val[k] * x[col[k]]) for the rows it is given.
type rowKernel[T model.Number] struct {
	rowPtr []int64
	col    []int32
	val    []T
	x      []T
	y      []T
}

func (k *rowKernel[T]) Range(lo, hi int) {
	rowPtr, col, val, x, y := k.rowPtr, k.col, k.val, k.x, k.y
	for i := lo; i < hi; i++ {
		start, end := rowPtr[i], rowPtr[i+1]
		cs := col[start:end]
		vs := val[start:end]
		vs = vs[:len(cs)]

		var sum T
		for j, c := range cs {
			sum += vs[j] * x[c]
		}
		y[i] = sum
	}
}

func (k *rowKernel[T]) release() { *k = rowKernel[T]{} }

// Multiplier computes matrix-vector products on a persistent worker pool.
// It is safe for concurrent use; calls are serialized.
type Multiplier struct {
	mu     sync.Mutex
	pool   *sched.Pool
	policy sched.Policy

	reals    rowKernel[float64]
	integers rowKernel[int64]
}

// NewMultiplier starts a pool of threads workers (0 = GOMAXPROCS) that
// schedules rows with policy.
func NewMultiplier(threads int, policy sched.Policy) (*Multiplier, error) {
	if threads < 0 {
		return nil, errs.New(errs.InvalidArgument, "csr.NewMultiplier", "negative thread count %d", threads)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Multiplier{pool: sched.NewPool(threads), policy: policy}, nil
}

// Threads returns the number of workers.
func (mp *Multiplier) Threads() int { return mp.pool.NumWorkers() }

// Policy returns the scheduling policy.
func (mp *Multiplier) Policy() sched.Policy { return mp.policy }

// Close stops the workers.
func (mp *Multiplier) Close() { mp.pool.Close() }

// MulVec overwrites result with mtx * vec. The call returns after every row
// was computed. Incompatible operands are reported before anything is
// written.
func (mp *Multiplier) MulVec(mtx *Matrix, vec, result *vector.Vector) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return mulVec(mtx, vec, result, func(n int, k sched.Body) {
		mp.pool.For(n, mp.policy, k)
	}, &mp.reals, &mp.integers)
}

// MulVec overwrites result with m * vec on the calling goroutine.
func (m *Matrix) MulVec(vec, result *vector.Vector) error {
	var (
		reals    rowKernel[float64]
		integers rowKernel[int64]
	)
	return mulVec(m, vec, result, func(n int, k sched.Body) { k.Range(0, n) }, &reals, &integers)
}

// CheckOperands reports whether vec and result fit mtx. The result must not
// share memory with vec.
func CheckOperands(mtx *Matrix, vec, result *vector.Vector) error {
	const op = "csr.MulVec"

	if mtx == nil || vec == nil || result == nil {
		return errs.New(errs.InvalidArgument, op, "nil operand")
	}
	if mtx.N != vec.Len() || mtx.Kind != vec.Kind() {
		return errs.New(errs.IncompatibleOperands, op,
			"matrix %dx%d %s with vector of %d %s", mtx.M, mtx.N, mtx.Kind, vec.Len(), vec.Kind())
	}
	if result.Len() != mtx.M || result.Kind() != mtx.Kind {
		return errs.New(errs.IncompatibleOperands, op,
			"result of %d %s for %d %s rows", result.Len(), result.Kind(), mtx.M, mtx.Kind)
	}
	if vec.Overlaps(result) {
		return errs.New(errs.IncompatibleOperands, op, "result aliases the input vector")
	}
	return nil
}

func mulVec(
	mtx *Matrix, vec, result *vector.Vector,
	run func(n int, k sched.Body),
	reals *rowKernel[float64], integers *rowKernel[int64],
) error {
	if err := CheckOperands(mtx, vec, result); err != nil {
		return err
	}

	rowPtr, err := mtx.RowPtr()
	if err != nil {
		return err
	}
	col, err := mtx.Cols()
	if err != nil {
		return err
	}

	switch mtx.Kind {
	case model.Real:
		if err := bind(reals, rowPtr, col, mtx.Reals, vec.Reals, result.Reals); err != nil {
			return err
		}
		run(mtx.M, reals)
		reals.release()
	case model.Integer:
		if err := bind(integers, rowPtr, col, mtx.Integers, vec.Integers, result.Integers); err != nil {
			return err
		}
		run(mtx.M, integers)
		integers.release()
	}
	return nil
}

func bind[T model.Number](
	k *rowKernel[T], rowPtr []int64, col []int32,
	val, x, y func() ([]T, error),
) error {
	var err error
	k.rowPtr, k.col = rowPtr, col
	if k.val, err = val(); err != nil {
		return err
	}
	if k.x, err = x(); err != nil {
		return err
	}
	if k.y, err = y(); err != nil {
		return err
	}
	return nil
}
