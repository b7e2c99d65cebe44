package mmio

import (
	"fmt"

	"github.com/hupe1980/spmv/model"
)

// Symmetry is the storage scheme declared in the banner.
type Symmetry uint8

const (
	// General stores every entry.
	General Symmetry = iota
	// Symmetric stores one triangle of a matrix with a(i,j) == a(j,i).
	Symmetric
	// SkewSymmetric stores one triangle of a matrix with a(i,j) == -a(j,i).
	SkewSymmetric
)

func (s Symmetry) String() string {
	switch s {
	case General:
		return "general"
	case Symmetric:
		return "symmetric"
	case SkewSymmetric:
		return "skew-symmetric"
	default:
		return fmt.Sprintf("symmetry(%d)", uint8(s))
	}
}

// Header describes a Matrix Market file.
type Header struct {
	Kind     model.Kind
	Symmetry Symmetry
	Rows     int
	Cols     int
	// Entries is the number of entry lines declared by the size line.
	Entries int
	// NonZeros is the number of stored triples after expansion. It is only
	// known once the entries were read.
	NonZeros int
	// Fingerprint is a murmur3 128-bit digest of the stored triples in read
	// order, hex encoded. It is set once the entries were read.
	Fingerprint string
}

// MaxNonZeros bounds the number of triples the entries expand to.
func (h Header) MaxNonZeros() int {
	if h.Symmetry == General {
		return h.Entries
	}
	return 2 * h.Entries
}
