package mmio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/coo"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
)

func newArena(t *testing.T) *arena.Arena {
	t.Helper()
	a, err := arena.New(1<<16, arena.WithHeap())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Free() })
	return a
}

func triples(t *testing.T, m *coo.Matrix) []coo.Triple {
	t.Helper()
	var out []coo.Triple
	require.NoError(t, m.Triples(func(tr coo.Triple) bool {
		out = append(out, tr)
		return true
	}))
	return out
}

const generalReal = `%%MatrixMarket matrix coordinate real general
% a comment
%

3 4 3
1 1 1.5
3 4 -2e1

2 2 0.25
`

func TestRead_General(t *testing.T) {
	m, h, err := Read(strings.NewReader(generalReal), newArena(t))
	require.NoError(t, err)

	assert.Equal(t, model.Real, h.Kind)
	assert.Equal(t, General, h.Symmetry)
	assert.Equal(t, 3, h.Rows)
	assert.Equal(t, 4, h.Cols)
	assert.Equal(t, 3, h.Entries)
	assert.Equal(t, 3, h.NonZeros)
	assert.Len(t, h.Fingerprint, 32)

	assert.Equal(t, 3, m.M)
	assert.Equal(t, 4, m.N)
	assert.Equal(t, []coo.Triple{
		{Row: 0, Col: 0, Real: 1.5},
		{Row: 2, Col: 3, Real: -20},
		{Row: 1, Col: 1, Real: 0.25},
	}, triples(t, m))
}

func TestRead_Integer(t *testing.T) {
	in := "%%MatrixMarket matrix coordinate integer general\r\n2 2 2\r\n1 2 7\r\n2 1 -3.0\r\n"
	m, h, err := Read(strings.NewReader(in), newArena(t))
	require.NoError(t, err)
	assert.Equal(t, model.Integer, h.Kind)
	assert.Equal(t, []coo.Triple{
		{Row: 0, Col: 1, Integer: 7},
		{Row: 1, Col: 0, Integer: -3},
	}, triples(t, m))
}

func TestRead_BannerCaseInsensitive(t *testing.T) {
	in := "%%matrixmarket MATRIX Coordinate REAL General\n1 1 1\n1 1 2\n"
	_, h, err := Read(strings.NewReader(in), newArena(t))
	require.NoError(t, err)
	assert.Equal(t, 1, h.NonZeros)
}

func TestRead_Symmetric(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate real symmetric
3 3 3
1 1 4
2 1 1
3 2 -2
`
	m, h, err := Read(strings.NewReader(in), newArena(t))
	require.NoError(t, err)
	assert.Equal(t, Symmetric, h.Symmetry)
	assert.Equal(t, 3, h.Entries)
	assert.Equal(t, 5, h.NonZeros)
	assert.Equal(t, 5, m.NZ)
	assert.ElementsMatch(t, []coo.Triple{
		{Row: 0, Col: 0, Real: 4},
		{Row: 1, Col: 0, Real: 1},
		{Row: 0, Col: 1, Real: 1},
		{Row: 2, Col: 1, Real: -2},
		{Row: 1, Col: 2, Real: -2},
	}, triples(t, m))
}

func TestRead_SkewSymmetric(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate integer skew-symmetric
2 2 1
2 1 5
`
	m, _, err := Read(strings.NewReader(in), newArena(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []coo.Triple{
		{Row: 1, Col: 0, Integer: 5},
		{Row: 0, Col: 1, Integer: -5},
	}, triples(t, m))
}

func TestRead_SkewSymmetricZeroDiagonal(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate real skew-symmetric
2 2 2
1 1 0
2 1 1.5
`
	m, _, err := Read(strings.NewReader(in), newArena(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []coo.Triple{
		{Row: 0, Col: 0, Real: 0},
		{Row: 1, Col: 0, Real: 1.5},
		{Row: 0, Col: 1, Real: -1.5},
	}, triples(t, m))
}

func TestRead_WithoutSymmetricExpansion(t *testing.T) {
	in := "%%MatrixMarket matrix coordinate real symmetric\n2 2 1\n2 1 1\n"
	_, _, err := Read(strings.NewReader(in), newArena(t), WithoutSymmetricExpansion())
	assert.ErrorIs(t, err, errs.ErrInvalidFileFormat)
}

func TestRead_Empty(t *testing.T) {
	in := "%%MatrixMarket matrix coordinate real general\n0 0 0\n"
	m, h, err := Read(strings.NewReader(in), newArena(t))
	require.NoError(t, err)
	assert.Equal(t, 0, m.NZ)
	assert.Equal(t, 0, h.Rows)
}

func TestRead_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty stream", ""},
		{"no banner", "3 3 1\n1 1 1\n"},
		{"short banner", "%%MatrixMarket matrix coordinate real\n1 1 1\n1 1 1\n"},
		{"array format", "%%MatrixMarket matrix array real general\n2 2\n1\n2\n3\n4\n"},
		{"complex field", "%%MatrixMarket matrix coordinate complex general\n1 1 1\n1 1 1 0\n"},
		{"pattern field", "%%MatrixMarket matrix coordinate pattern general\n1 1 1\n1 1\n"},
		{"hermitian", "%%MatrixMarket matrix coordinate real hermitian\n1 1 1\n1 1 1\n"},
		{"vector object", "%%MatrixMarket vector coordinate real general\n1 1 1\n1 1 1\n"},
		{"missing size", "%%MatrixMarket matrix coordinate real general\n% only comments\n"},
		{"short size", "%%MatrixMarket matrix coordinate real general\n2 2\n"},
		{"negative size", "%%MatrixMarket matrix coordinate real general\n-2 2 0\n"},
		{"non-square symmetric", "%%MatrixMarket matrix coordinate real symmetric\n2 3 0\n"},
		{"missing entries", "%%MatrixMarket matrix coordinate real general\n2 2 2\n1 1 1\n"},
		{"extra entries", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 1 1\n2 2 2\n"},
		{"zero row index", "%%MatrixMarket matrix coordinate real general\n2 2 1\n0 1 1\n"},
		{"zero column index", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 0 1\n"},
		{"row out of range", "%%MatrixMarket matrix coordinate real general\n2 2 1\n3 1 1\n"},
		{"column out of range", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 3 1\n"},
		{"malformed index", "%%MatrixMarket matrix coordinate real general\n2 2 1\nx 1 1\n"},
		{"malformed value", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 1 abc\n"},
		{"missing value", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 1\n"},
		{"non-integral integer", "%%MatrixMarket matrix coordinate integer general\n2 2 1\n1 1 1.5\n"},
		{"skew-symmetric real diagonal", "%%MatrixMarket matrix coordinate real skew-symmetric\n2 2 1\n1 1 3.5\n"},
		{"skew-symmetric integer diagonal", "%%MatrixMarket matrix coordinate integer skew-symmetric\n2 2 2\n2 1 4\n2 2 -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.in), newArena(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidFileFormat)
		})
	}
}

func TestReader_TwoPhase(t *testing.T) {
	rd, err := NewReader(strings.NewReader(generalReal))
	require.NoError(t, err)

	h := rd.Header()
	assert.Equal(t, 3, h.Entries)
	assert.Equal(t, 3, h.MaxNonZeros())
	assert.Empty(t, h.Fingerprint)

	_, err = rd.ReadMatrix(newArena(t))
	require.NoError(t, err)
	assert.NotEmpty(t, rd.Header().Fingerprint)

	_, err = rd.ReadMatrix(newArena(t))
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestRead_OutOfMemory(t *testing.T) {
	a, err := arena.New(32, arena.WithHeap())
	require.NoError(t, err)
	defer func() { _ = a.Free() }()

	_, _, err = Read(strings.NewReader(generalReal), a)
	assert.ErrorIs(t, err, errs.ErrOutOfMemory)
}

func TestFingerprint(t *testing.T) {
	_, h1, err := Read(strings.NewReader(generalReal), newArena(t))
	require.NoError(t, err)
	_, h2, err := Read(strings.NewReader(generalReal), newArena(t))
	require.NoError(t, err)
	assert.Equal(t, h1.Fingerprint, h2.Fingerprint)

	changed := strings.Replace(generalReal, "0.25", "0.5", 1)
	_, h3, err := Read(strings.NewReader(changed), newArena(t))
	require.NoError(t, err)
	assert.NotEqual(t, h1.Fingerprint, h3.Fingerprint)
}
