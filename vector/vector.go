package vector

import (
	"math"
	"math/rand/v2"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
)

const (
	// DefaultRandMin is the default lower bound for RandomFill.
	DefaultRandMin = 0
	// DefaultRandMax is the default upper bound for RandomFill.
	DefaultRandMax = 99
)

// Vector is a dense vector of n elements of one kind.
type Vector struct {
	arena  *arena.Arena
	handle arena.Handle
	n      int
	kind   model.Kind
}

// New allocates a zeroed vector of n elements in a.
func New(a *arena.Arena, n int, kind model.Kind) (*Vector, error) {
	const op = "vector.New"

	if a == nil {
		return nil, errs.New(errs.InvalidArgument, op, "nil arena")
	}
	if n < 0 {
		return nil, errs.New(errs.InvalidArgument, op, "negative length %d", n)
	}
	if !kind.Valid() {
		return nil, errs.New(errs.InvalidArgument, op, "invalid kind %s", kind)
	}

	h, err := a.Alloc(model.ElemSize, n)
	if err != nil {
		return nil, err
	}

	return &Vector{arena: a, handle: h, n: n, kind: kind}, nil
}

// Len returns the number of elements.
func (v *Vector) Len() int { return v.n }

// Kind returns the element kind.
func (v *Vector) Kind() model.Kind { return v.kind }

// Overlaps reports whether v and o share backing memory.
func (v *Vector) Overlaps(o *Vector) bool {
	if v == o {
		return true
	}
	if v.arena != o.arena || v.handle.Size() == 0 || o.handle.Size() == 0 {
		return false
	}
	a, b := v.handle, o.handle
	return a.Offset < b.Offset+b.Size() && b.Offset < a.Offset+a.Size()
}

// Handle returns the arena handle of the backing buffer.
func (v *Vector) Handle() arena.Handle { return v.handle }

// Reals resolves the backing buffer of a real vector.
func (v *Vector) Reals() ([]float64, error) {
	if v.kind != model.Real {
		return nil, errs.New(errs.InvalidArgument, "vector.Reals", "vector holds %s values", v.kind)
	}
	return arena.View[float64](v.arena, v.handle)
}

// Integers resolves the backing buffer of an integer vector.
func (v *Vector) Integers() ([]int64, error) {
	if v.kind != model.Integer {
		return nil, errs.New(errs.InvalidArgument, "vector.Integers", "vector holds %s values", v.kind)
	}
	return arena.View[int64](v.arena, v.handle)
}

func (v *Vector) checkIndex(op string, idx int) error {
	if idx < 0 || idx >= v.n {
		return errs.New(errs.IndexOutOfBounds, op, "index %d out of range [0,%d)", idx, v.n)
	}
	return nil
}

// Real returns element idx of a real vector.
func (v *Vector) Real(idx int) (float64, error) {
	const op = "vector.Real"
	if v.kind != model.Real {
		return 0, errs.New(errs.InvalidArgument, op, "real access on %s vector", v.kind)
	}
	if err := v.checkIndex(op, idx); err != nil {
		return 0, err
	}
	s, err := v.Reals()
	if err != nil {
		return 0, err
	}
	return s[idx], nil
}

// SetReal sets element idx of a real vector.
func (v *Vector) SetReal(idx int, val float64) error {
	const op = "vector.SetReal"
	if v.kind != model.Real {
		return errs.New(errs.InvalidArgument, op, "real access on %s vector", v.kind)
	}
	if err := v.checkIndex(op, idx); err != nil {
		return err
	}
	s, err := v.Reals()
	if err != nil {
		return err
	}
	s[idx] = val
	return nil
}

// Integer returns element idx of an integer vector.
func (v *Vector) Integer(idx int) (int64, error) {
	const op = "vector.Integer"
	if v.kind != model.Integer {
		return 0, errs.New(errs.InvalidArgument, op, "integer access on %s vector", v.kind)
	}
	if err := v.checkIndex(op, idx); err != nil {
		return 0, err
	}
	s, err := v.Integers()
	if err != nil {
		return 0, err
	}
	return s[idx], nil
}

// SetInteger sets element idx of an integer vector.
func (v *Vector) SetInteger(idx int, val int64) error {
	const op = "vector.SetInteger"
	if v.kind != model.Integer {
		return errs.New(errs.InvalidArgument, op, "integer access on %s vector", v.kind)
	}
	if err := v.checkIndex(op, idx); err != nil {
		return err
	}
	s, err := v.Integers()
	if err != nil {
		return err
	}
	s[idx] = val
	return nil
}

// FillReal sets every element of a real vector to val.
func (v *Vector) FillReal(val float64) error {
	s, err := v.Reals()
	if err != nil {
		return err
	}
	for i := range s {
		s[i] = val
	}
	return nil
}

// FillInteger sets every element of an integer vector to val.
func (v *Vector) FillInteger(val int64) error {
	s, err := v.Integers()
	if err != nil {
		return err
	}
	for i := range s {
		s[i] = val
	}
	return nil
}

// RandomFill fills the vector with values drawn uniformly from r.
// Real vectors draw from [lo, hi); integer vectors from [lo, hi], in which
// case both bounds must be integral.
func (v *Vector) RandomFill(r *rand.Rand, lo, hi float64) error {
	const op = "vector.RandomFill"

	if r == nil {
		return errs.New(errs.InvalidArgument, op, "nil random source")
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return errs.New(errs.InvalidArgument, op, "invalid range [%g, %g]", lo, hi)
	}

	switch v.kind {
	case model.Real:
		s, err := v.Reals()
		if err != nil {
			return err
		}
		width := hi - lo
		for i := range s {
			s[i] = lo + r.Float64()*width
		}
	case model.Integer:
		if lo != math.Trunc(lo) || hi != math.Trunc(hi) {
			return errs.New(errs.InvalidArgument, op, "integer range [%g, %g] is not integral", lo, hi)
		}
		span := uint64(int64(hi)-int64(lo)) + 1
		if span == 0 {
			return errs.New(errs.InvalidArgument, op, "integer range [%g, %g] too wide", lo, hi)
		}
		s, err := v.Integers()
		if err != nil {
			return err
		}
		base := int64(lo)
		for i := range s {
			s[i] = base + int64(r.Uint64N(span))
		}
	}
	return nil
}
