package spmv

import (
	"github.com/hupe1980/spmv/internal/errs"
)

// Error kinds.
var (
	// ErrInvalidArgument reports a bad parameter or a mismatched element kind.
	ErrInvalidArgument = errs.ErrInvalidArgument
	// ErrIndexOutOfBounds reports an index outside its valid range.
	ErrIndexOutOfBounds = errs.ErrIndexOutOfBounds
	// ErrOutOfMemory reports an exhausted arena or memory budget.
	ErrOutOfMemory = errs.ErrOutOfMemory
	// ErrFileIO reports a failure reading the input file.
	ErrFileIO = errs.ErrFileIO
	// ErrInvalidFileFormat reports malformed or unsupported input.
	ErrInvalidFileFormat = errs.ErrInvalidFileFormat
	// ErrIncompatibleOperands reports a matrix and vectors that cannot be multiplied.
	ErrIncompatibleOperands = errs.ErrIncompatibleOperands
)

// Error is the typed error returned by all packages of this module.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type Error = errs.Error

// ErrorKind classifies an Error.
type ErrorKind = errs.Kind

// KindOf returns the kind of err, or the zero kind for foreign errors.
func KindOf(err error) ErrorKind { return errs.KindOf(err) }

// LastErrorDetail returns the message of the most recent failure recorded by
// Run or Load. It is empty after a successful run.
func LastErrorDetail() string { return errs.Detail() }

func recordFailure(err error) error {
	if err != nil {
		errs.SetDetail(err)
	}
	return err
}
