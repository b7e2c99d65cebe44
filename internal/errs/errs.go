// Package errs defines the error taxonomy shared by every spmv package.
//
// Each Kind has a sentinel that *Error values match with errors.Is, so callers
// can branch on the category without unwrapping:
//
//	if errors.Is(err, errs.ErrOutOfMemory) { ... }
package errs

import (
	"errors"
	"fmt"
	"sync"
)

// Kind classifies an error.
type Kind uint8

const (
	// Unknown is the zero Kind. It is never produced by this module.
	Unknown Kind = iota
	// InvalidArgument reports a bad parameter, including tag mismatches.
	InvalidArgument
	// IndexOutOfBounds reports an index outside its valid range.
	IndexOutOfBounds
	// OutOfMemory reports an exhausted arena or memory budget.
	OutOfMemory
	// FileIO reports a failure opening, reading or writing a file.
	FileIO
	// InvalidFileFormat reports malformed or unsupported input.
	InvalidFileFormat
	// IncompatibleOperands reports operands that cannot be combined.
	IncompatibleOperands
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case IndexOutOfBounds:
		return "index out of bounds"
	case OutOfMemory:
		return "out of memory"
	case FileIO:
		return "file i/o"
	case InvalidFileFormat:
		return "invalid file format"
	case IncompatibleOperands:
		return "incompatible operands"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidArgument is the sentinel for InvalidArgument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexOutOfBounds is the sentinel for IndexOutOfBounds.
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	// ErrOutOfMemory is the sentinel for OutOfMemory.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrFileIO is the sentinel for FileIO.
	ErrFileIO = errors.New("file i/o")
	// ErrInvalidFileFormat is the sentinel for InvalidFileFormat.
	ErrInvalidFileFormat = errors.New("invalid file format")
	// ErrIncompatibleOperands is the sentinel for IncompatibleOperands.
	ErrIncompatibleOperands = errors.New("incompatible operands")
)

func sentinel(k Kind) error {
	switch k {
	case InvalidArgument:
		return ErrInvalidArgument
	case IndexOutOfBounds:
		return ErrIndexOutOfBounds
	case OutOfMemory:
		return ErrOutOfMemory
	case FileIO:
		return ErrFileIO
	case InvalidFileFormat:
		return ErrInvalidFileFormat
	case IncompatibleOperands:
		return ErrIncompatibleOperands
	default:
		return nil
	}
}

// Error is the structured error returned by spmv operations.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type Error struct {
	Kind Kind
	// Op names the failing operation, e.g. "arena.Alloc".
	Op  string
	Msg string
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg = e.Msg
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind or an *Error of the
// same kind.
func (e *Error) Is(target error) bool {
	if s := sentinel(e.Kind); s != nil && target == s {
		return true
	}
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
	}
	return false
}

// New returns an *Error of kind k for operation op.
func New(k Kind, op, format string, args ...any) *Error {
	return &Error{Kind: k, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of kind k wrapping err. It returns nil if err is nil.
func Wrap(k Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Op: op, Err: err}
}

// Wrapf is Wrap with a message.
func Wrapf(k Kind, op string, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k := InvalidArgument; k <= IncompatibleOperands; k++ {
		if errors.Is(err, sentinel(k)) {
			return k
		}
	}
	return Unknown
}

// The detail slot keeps the most recent human-readable failure message for
// callers that only get an exit status. Only single-threaded setup and
// teardown code may write it; kernel workers never do.
var (
	detailMu sync.Mutex
	detail   string
)

// SetDetail records err's message in the detail slot. A nil err is ignored.
func SetDetail(err error) {
	if err == nil {
		return
	}
	detailMu.Lock()
	detail = err.Error()
	detailMu.Unlock()
}

// Detail returns the most recent message recorded by SetDetail.
func Detail() string {
	detailMu.Lock()
	defer detailMu.Unlock()
	return detail
}

// ClearDetail empties the detail slot.
func ClearDetail() {
	detailMu.Lock()
	detail = ""
	detailMu.Unlock()
}
