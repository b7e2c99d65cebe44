// Package coo implements the coordinate (triplet) sparse matrix format.
//
// A Matrix stores its row indices, column indices and values in three arena
// allocations. Entries have no ordering guarantee and duplicates are kept as
// separate triples, so a Matrix is a multiset of (row, col, value).
//
// Matrices are created through a Builder, which validates every triple and
// only hands out a Matrix once all declared entries were added:
//
//	b, err := coo.NewBuilder(a, 3, 3, 2, model.Real)
//	_ = b.AddReal(0, 0, 1.5)
//	_ = b.AddReal(2, 1, -4)
//	m, err := b.Build()
package coo
