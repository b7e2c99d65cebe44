package csr

import (
	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/internal/conv"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
)

// footprintAllocs is the number of arena allocations made by loading,
// converting and multiplying one matrix.
const footprintAllocs = 9

// Footprint returns the arena capacity needed to hold an m x n coordinate
// matrix with nz triples, its compressed row form with the conversion
// cursor, an input vector of n and a result vector of m elements.
func Footprint(m, n, nz int) (int, error) {
	const op = "csr.Footprint"

	if m < 0 || n < 0 || nz < 0 {
		return 0, errs.New(errs.InvalidArgument, op, "negative dimensions %dx%d nz=%d", m, n, nz)
	}

	// Per triple: coordinate row, column and value, compressed column and
	// value.
	perTriple := 4 + 4 + model.ElemSize + 4 + model.ElemSize
	// Per row: row pointer, cursor, result element.
	perRow := 8 + 8 + model.ElemSize

	total := 0
	for _, term := range [][2]int{
		{nz, perTriple},
		{m, perRow},
		{n, model.ElemSize},
		{1, 8}, // rowPtr[M]
		{footprintAllocs, arena.DefaultAlignment},
	} {
		v, err := conv.MulSize(term[0], term[1])
		if err != nil {
			return 0, errs.Wrap(errs.InvalidArgument, op, err)
		}
		if total, err = conv.AddSize(total, v); err != nil {
			return 0, errs.Wrap(errs.InvalidArgument, op, err)
		}
	}
	return total, nil
}
