package coo

import (
	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
	"github.com/hupe1980/spmv/vector"
)

// Matrix is a sparse matrix in coordinate format.
type Matrix struct {
	M    int
	N    int
	NZ   int
	Kind model.Kind

	arena *arena.Arena
	rows  arena.Handle
	cols  arena.Handle
	vals  arena.Handle
}

// Triple is one stored entry. Only the value field matching the matrix kind
// is set.
type Triple struct {
	Row     int
	Col     int
	Real    float64
	Integer int64
}

// Arena returns the arena backing the matrix.
func (m *Matrix) Arena() *arena.Arena { return m.arena }

// Rows resolves the row index array.
func (m *Matrix) Rows() ([]int32, error) {
	s, err := arena.View[int32](m.arena, m.rows)
	if err != nil {
		return nil, err
	}
	return s[:m.NZ:m.NZ], nil
}

// Cols resolves the column index array.
func (m *Matrix) Cols() ([]int32, error) {
	s, err := arena.View[int32](m.arena, m.cols)
	if err != nil {
		return nil, err
	}
	return s[:m.NZ:m.NZ], nil
}

// Reals resolves the value array of a real matrix.
func (m *Matrix) Reals() ([]float64, error) {
	if m.Kind != model.Real {
		return nil, errs.New(errs.InvalidArgument, "coo.Reals", "matrix holds %s values", m.Kind)
	}
	s, err := arena.View[float64](m.arena, m.vals)
	if err != nil {
		return nil, err
	}
	return s[:m.NZ:m.NZ], nil
}

// Integers resolves the value array of an integer matrix.
func (m *Matrix) Integers() ([]int64, error) {
	if m.Kind != model.Integer {
		return nil, errs.New(errs.InvalidArgument, "coo.Integers", "matrix holds %s values", m.Kind)
	}
	s, err := arena.View[int64](m.arena, m.vals)
	if err != nil {
		return nil, err
	}
	return s[:m.NZ:m.NZ], nil
}

// Triples calls fn for every stored entry in storage order until fn returns
// false.
func (m *Matrix) Triples(fn func(Triple) bool) error {
	rows, err := m.Rows()
	if err != nil {
		return err
	}
	cols, err := m.Cols()
	if err != nil {
		return err
	}

	switch m.Kind {
	case model.Real:
		vals, err := m.Reals()
		if err != nil {
			return err
		}
		for k := range rows {
			if !fn(Triple{Row: int(rows[k]), Col: int(cols[k]), Real: vals[k]}) {
				return nil
			}
		}
	case model.Integer:
		vals, err := m.Integers()
		if err != nil {
			return err
		}
		for k := range rows {
			if !fn(Triple{Row: int(rows[k]), Col: int(cols[k]), Integer: vals[k]}) {
				return nil
			}
		}
	}
	return nil
}

// MulVec computes result = m * vec sequentially by accumulating every triple.
// It serves as the reference product for the compressed row kernel.
func (m *Matrix) MulVec(vec, result *vector.Vector) error {
	const op = "coo.MulVec"

	if vec == nil || result == nil {
		return errs.New(errs.InvalidArgument, op, "nil vector")
	}
	if m.N != vec.Len() || m.Kind != vec.Kind() {
		return errs.New(errs.IncompatibleOperands, op,
			"matrix %dx%d %s with vector of %d %s", m.M, m.N, m.Kind, vec.Len(), vec.Kind())
	}
	if result.Len() != m.M || result.Kind() != m.Kind {
		return errs.New(errs.IncompatibleOperands, op,
			"result of %d %s for %d %s rows", result.Len(), result.Kind(), m.M, m.Kind)
	}

	rows, err := m.Rows()
	if err != nil {
		return err
	}
	cols, err := m.Cols()
	if err != nil {
		return err
	}

	switch m.Kind {
	case model.Real:
		vals, _ := m.Reals()
		x, err := vec.Reals()
		if err != nil {
			return err
		}
		dst, err := result.Reals()
		if err != nil {
			return err
		}
		accumulate(dst, x, rows, cols, vals)
	case model.Integer:
		vals, _ := m.Integers()
		x, err := vec.Integers()
		if err != nil {
			return err
		}
		dst, err := result.Integers()
		if err != nil {
			return err
		}
		accumulate(dst, x, rows, cols, vals)
	}
	return nil
}

func accumulate[T model.Number](dst, x []T, rows, cols []int32, vals []T) {
	clear(dst)
	for k, v := range vals {
		dst[rows[k]] += v * x[cols[k]]
	}
}
