package csr

import (
	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/coo"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
)

// Matrix is a sparse matrix in compressed sparse row format.
type Matrix struct {
	M    int
	N    int
	NZ   int
	Kind model.Kind

	arena  *arena.Arena
	rowPtr arena.Handle
	col    arena.Handle
	vals   arena.Handle
}

// FromCOO converts src into a new compressed row matrix allocated in a.
// Entries are grouped by row; within a row they keep their coordinate order.
func FromCOO(a *arena.Arena, src *coo.Matrix) (*Matrix, error) {
	const op = "csr.FromCOO"

	if a == nil || src == nil {
		return nil, errs.New(errs.InvalidArgument, op, "nil argument")
	}

	rows, err := src.Rows()
	if err != nil {
		return nil, err
	}
	cols, err := src.Cols()
	if err != nil {
		return nil, err
	}

	dst := &Matrix{M: src.M, N: src.N, NZ: src.NZ, Kind: src.Kind, arena: a}

	var rowPtr []int64
	if dst.rowPtr, rowPtr, err = arena.AllocSlice[int64](a, src.M+1); err != nil {
		return nil, err
	}
	_, cursor, err := arena.AllocSlice[int64](a, src.M)
	if err != nil {
		return nil, err
	}
	var col []int32
	if dst.col, col, err = arena.AllocSlice[int32](a, src.NZ); err != nil {
		return nil, err
	}

	for _, r := range rows {
		rowPtr[r+1]++
	}
	for i := 0; i < src.M; i++ {
		rowPtr[i+1] += rowPtr[i]
	}
	copy(cursor, rowPtr[:src.M])

	switch src.Kind {
	case model.Real:
		in, err := src.Reals()
		if err != nil {
			return nil, err
		}
		var out []float64
		if dst.vals, out, err = arena.AllocSlice[float64](a, src.NZ); err != nil {
			return nil, err
		}
		scatter(cursor, col, out, rows, cols, in)
	case model.Integer:
		in, err := src.Integers()
		if err != nil {
			return nil, err
		}
		var out []int64
		if dst.vals, out, err = arena.AllocSlice[int64](a, src.NZ); err != nil {
			return nil, err
		}
		scatter(cursor, col, out, rows, cols, in)
	default:
		return nil, errs.New(errs.InvalidArgument, op, "invalid kind %s", src.Kind)
	}

	return dst, nil
}

func scatter[T model.Number](cursor []int64, dstCol []int32, dstVal []T, rows, cols []int32, vals []T) {
	for k, r := range rows {
		pos := cursor[r]
		cursor[r]++
		dstCol[pos] = cols[k]
		dstVal[pos] = vals[k]
	}
}

// RowPtr resolves the row pointer array of length M+1.
func (m *Matrix) RowPtr() ([]int64, error) {
	return arena.View[int64](m.arena, m.rowPtr)
}

// Cols resolves the column index array of length NZ.
func (m *Matrix) Cols() ([]int32, error) {
	return arena.View[int32](m.arena, m.col)
}

// Reals resolves the value array of a real matrix.
func (m *Matrix) Reals() ([]float64, error) {
	if m.Kind != model.Real {
		return nil, errs.New(errs.InvalidArgument, "csr.Reals", "matrix holds %s values", m.Kind)
	}
	return arena.View[float64](m.arena, m.vals)
}

// Integers resolves the value array of an integer matrix.
func (m *Matrix) Integers() ([]int64, error) {
	if m.Kind != model.Integer {
		return nil, errs.New(errs.InvalidArgument, "csr.Integers", "matrix holds %s values", m.Kind)
	}
	return arena.View[int64](m.arena, m.vals)
}

// Validate checks the structural invariants: rowPtr[0] == 0, row pointers
// are nondecreasing and end at NZ, and every column index lies in [0, N).
func (m *Matrix) Validate() error {
	const op = "csr.Validate"

	rowPtr, err := m.RowPtr()
	if err != nil {
		return err
	}
	col, err := m.Cols()
	if err != nil {
		return err
	}

	if len(rowPtr) != m.M+1 {
		return errs.New(errs.InvalidArgument, op, "row pointer length %d, want %d", len(rowPtr), m.M+1)
	}
	if rowPtr[0] != 0 {
		return errs.New(errs.InvalidArgument, op, "rowPtr[0] = %d", rowPtr[0])
	}
	for i := 0; i < m.M; i++ {
		if rowPtr[i+1] < rowPtr[i] {
			return errs.New(errs.InvalidArgument, op, "rowPtr decreases at row %d", i)
		}
	}
	if rowPtr[m.M] != int64(m.NZ) || len(col) != m.NZ {
		return errs.New(errs.InvalidArgument, op, "rowPtr[M] = %d, %d columns, want %d", rowPtr[m.M], len(col), m.NZ)
	}
	for k, c := range col {
		if c < 0 || int(c) >= m.N {
			return errs.New(errs.IndexOutOfBounds, op, "column %d at entry %d outside [0,%d)", c, k, m.N)
		}
	}
	return nil
}

// Row calls fn for every entry of row i in storage order.
func (m *Matrix) Row(i int, fn func(coo.Triple)) error {
	if i < 0 || i >= m.M {
		return errs.New(errs.IndexOutOfBounds, "csr.Row", "row %d outside [0,%d)", i, m.M)
	}
	rowPtr, err := m.RowPtr()
	if err != nil {
		return err
	}
	col, err := m.Cols()
	if err != nil {
		return err
	}

	lo, hi := rowPtr[i], rowPtr[i+1]
	if m.Kind == model.Real {
		vals, _ := m.Reals()
		for k := lo; k < hi; k++ {
			fn(coo.Triple{Row: i, Col: int(col[k]), Real: vals[k]})
		}
		return nil
	}
	vals, _ := m.Integers()
	for k := lo; k < hi; k++ {
		fn(coo.Triple{Row: i, Col: int(col[k]), Integer: vals[k]})
	}
	return nil
}
