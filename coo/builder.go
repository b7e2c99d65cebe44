package coo

import (
	"math"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
)

// Builder accumulates triples into arena storage and produces a Matrix.
type Builder struct {
	m       Matrix
	exact   bool
	count   int
	built   bool
	rows    []int32
	cols    []int32
	reals   []float64
	integer []int64
}

// NewBuilder allocates storage for exactly nz triples of an m x n matrix.
// Build fails unless exactly nz triples were added.
func NewBuilder(a *arena.Arena, m, n, nz int, kind model.Kind) (*Builder, error) {
	return newBuilder(a, m, n, nz, kind, true)
}

// NewBoundedBuilder allocates storage for at most maxNZ triples. Build accepts
// any count up to maxNZ. Loaders that expand symmetric storage use it since
// the final entry count is only known after parsing.
func NewBoundedBuilder(a *arena.Arena, m, n, maxNZ int, kind model.Kind) (*Builder, error) {
	return newBuilder(a, m, n, maxNZ, kind, false)
}

func newBuilder(a *arena.Arena, m, n, nz int, kind model.Kind, exact bool) (*Builder, error) {
	const op = "coo.NewBuilder"

	if a == nil {
		return nil, errs.New(errs.InvalidArgument, op, "nil arena")
	}
	if m < 0 || n < 0 || nz < 0 {
		return nil, errs.New(errs.InvalidArgument, op, "negative dimensions %dx%d nz=%d", m, n, nz)
	}
	if m > math.MaxInt32 || n > math.MaxInt32 {
		return nil, errs.New(errs.InvalidArgument, op, "dimensions %dx%d exceed int32 indices", m, n)
	}
	if !kind.Valid() {
		return nil, errs.New(errs.InvalidArgument, op, "invalid kind %s", kind)
	}

	b := &Builder{
		m:     Matrix{M: m, N: n, Kind: kind, arena: a},
		exact: exact,
	}

	var err error
	if b.m.rows, b.rows, err = arena.AllocSlice[int32](a, nz); err != nil {
		return nil, err
	}
	if b.m.cols, b.cols, err = arena.AllocSlice[int32](a, nz); err != nil {
		return nil, err
	}
	switch kind {
	case model.Real:
		b.m.vals, b.reals, err = arena.AllocSlice[float64](a, nz)
	case model.Integer:
		b.m.vals, b.integer, err = arena.AllocSlice[int64](a, nz)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Len returns the number of triples added so far.
func (b *Builder) Len() int { return b.count }

// Cap returns the number of triples the builder can hold.
func (b *Builder) Cap() int { return len(b.rows) }

func (b *Builder) check(op string, row, col int, kind model.Kind) error {
	if b.built {
		return errs.New(errs.InvalidArgument, op, "builder already built")
	}
	if kind != b.m.Kind {
		return errs.New(errs.InvalidArgument, op, "%s value for %s matrix", kind, b.m.Kind)
	}
	if row < 0 || row >= b.m.M || col < 0 || col >= b.m.N {
		return errs.New(errs.IndexOutOfBounds, op, "entry (%d,%d) outside %dx%d", row, col, b.m.M, b.m.N)
	}
	if b.count == len(b.rows) {
		return errs.New(errs.InvalidArgument, op, "more than %d entries", len(b.rows))
	}
	return nil
}

// AddReal appends a real triple with 0-based indices.
func (b *Builder) AddReal(row, col int, v float64) error {
	if err := b.check("coo.AddReal", row, col, model.Real); err != nil {
		return err
	}
	b.rows[b.count] = int32(row) //nolint:gosec // bounded by M
	b.cols[b.count] = int32(col) //nolint:gosec // bounded by N
	b.reals[b.count] = v
	b.count++
	return nil
}

// AddInteger appends an integer triple with 0-based indices.
func (b *Builder) AddInteger(row, col int, v int64) error {
	if err := b.check("coo.AddInteger", row, col, model.Integer); err != nil {
		return err
	}
	b.rows[b.count] = int32(row) //nolint:gosec // bounded by M
	b.cols[b.count] = int32(col) //nolint:gosec // bounded by N
	b.integer[b.count] = v
	b.count++
	return nil
}

// Build returns the matrix. The builder cannot be used afterwards.
func (b *Builder) Build() (*Matrix, error) {
	const op = "coo.Build"

	if b.built {
		return nil, errs.New(errs.InvalidArgument, op, "builder already built")
	}
	if b.exact && b.count != len(b.rows) {
		return nil, errs.New(errs.InvalidArgument, op, "%d of %d entries added", b.count, len(b.rows))
	}

	b.built = true
	m := b.m
	m.NZ = b.count
	return &m, nil
}
