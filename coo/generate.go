package coo

import (
	"math"
	"math/rand/v2"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/internal/conv"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
)

// GenerateConfig describes a random matrix.
type GenerateConfig struct {
	Rows    int
	Cols    int
	Density float64 // share of stored positions in [0, 1]
	Kind    model.Kind
	Min     float64 // lower value bound
	Max     float64 // upper value bound (exclusive for reals)
}

// NonZeros returns the number of entries a matrix generated from cfg holds.
func (cfg GenerateConfig) NonZeros() (int, error) {
	const op = "coo.Generate"

	if cfg.Rows < 0 || cfg.Cols < 0 {
		return 0, errs.New(errs.InvalidArgument, op, "negative dimensions %dx%d", cfg.Rows, cfg.Cols)
	}
	if math.IsNaN(cfg.Density) || cfg.Density < 0 || cfg.Density > 1 {
		return 0, errs.New(errs.InvalidArgument, op, "density %g outside [0, 1]", cfg.Density)
	}
	total, err := conv.MulSize(cfg.Rows, cfg.Cols)
	if err != nil {
		return 0, errs.Wrap(errs.InvalidArgument, op, err)
	}
	return int(math.Round(cfg.Density * float64(total))), nil
}

// Generate builds a random matrix with distinct positions drawn uniformly
// from the m x n grid. Entries are emitted in row-major order.
func Generate(a *arena.Arena, r *rand.Rand, cfg GenerateConfig) (*Matrix, error) {
	const op = "coo.Generate"

	if r == nil {
		return nil, errs.New(errs.InvalidArgument, op, "nil random source")
	}
	if math.IsNaN(cfg.Min) || math.IsNaN(cfg.Max) || cfg.Min > cfg.Max {
		return nil, errs.New(errs.InvalidArgument, op, "invalid value range [%g, %g]", cfg.Min, cfg.Max)
	}
	if cfg.Kind == model.Integer && (cfg.Min != math.Trunc(cfg.Min) || cfg.Max != math.Trunc(cfg.Max)) {
		return nil, errs.New(errs.InvalidArgument, op, "integer range [%g, %g] is not integral", cfg.Min, cfg.Max)
	}

	nz, err := cfg.NonZeros()
	if err != nil {
		return nil, err
	}

	b, err := NewBuilder(a, cfg.Rows, cfg.Cols, nz, cfg.Kind)
	if err != nil {
		return nil, err
	}

	positions := samplePositions(r, uint64(cfg.Rows)*uint64(cfg.Cols), uint64(nz)) //nolint:gosec // non-negative

	width := cfg.Max - cfg.Min
	span := uint64(int64(cfg.Max)-int64(cfg.Min)) + 1
	if cfg.Kind == model.Integer && span == 0 {
		return nil, errs.New(errs.InvalidArgument, op, "integer range [%g, %g] too wide", cfg.Min, cfg.Max)
	}

	it := positions.Iterator()
	for it.HasNext() {
		p := it.Next()
		row := int(p / uint64(cfg.Cols)) //nolint:gosec // below Rows
		col := int(p % uint64(cfg.Cols)) //nolint:gosec // below Cols

		switch cfg.Kind {
		case model.Real:
			err = b.AddReal(row, col, cfg.Min+r.Float64()*width)
		case model.Integer:
			err = b.AddInteger(row, col, int64(cfg.Min)+int64(r.Uint64N(span))) //nolint:gosec // below span
		}
		if err != nil {
			return nil, err
		}
	}

	return b.Build()
}

// samplePositions draws k distinct values from [0, total) with Floyd's
// algorithm.
func samplePositions(r *rand.Rand, total, k uint64) *roaring64.Bitmap {
	set := roaring64.New()
	for j := total - k; j < total; j++ {
		t := r.Uint64N(j + 1)
		if set.Contains(t) {
			t = j
		}
		set.Add(t)
	}
	return set
}
