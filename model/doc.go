// Package model defines the element kinds shared by vectors and matrices.
//
// Every vector and matrix carries exactly one Kind tag. Real elements are
// stored as float64 and integer elements as int64; operations that combine
// operands require equal tags.
package model
