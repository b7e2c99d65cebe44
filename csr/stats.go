package csr

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
)

// Stats summarizes the sparsity structure of a matrix.
type Stats struct {
	Rows            int
	Cols            int
	NonZeros        int
	EmptyRows       int
	MaxRowNonZeros  int
	MeanRowNonZeros float64
	DistinctColumns int
}

// Stats computes the structure summary.
func (m *Matrix) Stats() (Stats, error) {
	rowPtr, err := m.RowPtr()
	if err != nil {
		return Stats{}, err
	}
	col, err := m.Cols()
	if err != nil {
		return Stats{}, err
	}

	s := Stats{Rows: m.M, Cols: m.N, NonZeros: m.NZ}

	occupied := bitset.New(uint(m.M)) //nolint:gosec // non-negative
	for i := 0; i < m.M; i++ {
		n := int(rowPtr[i+1] - rowPtr[i])
		if n > 0 {
			occupied.Set(uint(i)) //nolint:gosec // non-negative
		}
		s.MaxRowNonZeros = max(s.MaxRowNonZeros, n)
	}
	s.EmptyRows = m.M - int(occupied.Count()) //nolint:gosec // bounded by M

	columns := roaring.New()
	for _, c := range col {
		columns.Add(uint32(c)) //nolint:gosec // non-negative
	}
	s.DistinctColumns = int(columns.GetCardinality()) //nolint:gosec // bounded by N

	if m.M > 0 {
		s.MeanRowNonZeros = float64(m.NZ) / float64(m.M)
	}
	return s, nil
}
