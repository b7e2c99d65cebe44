// Package mmio reads and writes sparse matrices in the Matrix Market
// coordinate format.
//
// Supported headers are
//
//	%%MatrixMarket matrix coordinate <real|integer> <general|symmetric|skew-symmetric>
//
// followed by optional % comment lines, a size line "rows cols entries" and
// one "row col value" line per entry with 1-based indices. Symmetric and
// skew-symmetric files store one triangle; the reader mirrors every
// off-diagonal entry (negated for skew-symmetric) unless
// WithoutSymmetricExpansion is set, in which case such files are rejected.
//
// Files ending in .gz, .zst, .lz4 or .sz are decompressed transparently.
package mmio
