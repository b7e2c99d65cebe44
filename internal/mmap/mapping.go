package mmap

import (
	"errors"
	"os"
	"sync/atomic"
)

// Advice is a kernel hint about upcoming accesses.
type Advice int

const (
	AdviceNormal Advice = iota
	// AdviceSequential suits a single front-to-back parse.
	AdviceSequential
	// AdviceWillNeed asks the kernel to fault pages in ahead of use.
	AdviceWillNeed
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested or file size is invalid.
	ErrInvalidSize = errors.New("mmap: invalid size")
)

// Mapping owns a mapped byte region. The zero-length mapping holds no memory.
type Mapping struct {
	data     []byte
	writable bool
	mapped   bool // data came from mmap and needs unmapping
	closed   atomic.Bool
}

// Open maps the file at path read-only.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size < 0 || int64(int(size)) != size {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{}, nil
	}

	data, err := mapFile(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, mapped: true}, nil
}

// MapAnon returns a zeroed, writable mapping of size bytes outside the Go heap.
func MapAnon(size int) (*Mapping, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{writable: true}, nil
	}

	data, err := mapAnon(size)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, writable: true, mapped: true}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	data := m.data
	m.data = nil
	if m.mapped && data != nil {
		return unmap(data)
	}
	return nil
}

// Bytes returns the mapped region, or nil once closed.
// Slices obtained earlier must not be used after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int { return len(m.data) }

// Writable reports whether the mapping was created read-write.
func (m *Mapping) Writable() bool { return m.writable }

// Advise passes a on to the kernel for the whole mapping.
func (m *Mapping) Advise(a Advice) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return advise(m.data, a)
}
