// Package vector implements fixed-length, kind-tagged dense vectors stored in
// an arena.
//
// Accessors check both the element kind and the index:
//
//	v, _ := vector.New(a, 3, model.Real)
//	_ = v.SetReal(0, 1.5)
//	_, err := v.Integer(0) // errs.ErrInvalidArgument (kind mismatch)
//	_, err = v.Real(3)     // errs.ErrIndexOutOfBounds
package vector
