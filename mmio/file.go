package mmio

import (
	"bytes"
	"io"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/coo"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/internal/mmap"
)

// File is a Reader over a memory-mapped, optionally compressed file.
type File struct {
	*Reader
	mapping *mmap.Mapping
	stream  io.ReadCloser
}

// Open maps path read-only and parses its header. The compression is derived
// from the file extension.
func Open(path string, opts ...Option) (*File, error) {
	const op = "mmio.Open"

	m, err := mmap.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.FileIO, op, err)
	}
	_ = m.Advise(mmap.AdviceSequential)

	stream, err := Decompress(bytes.NewReader(m.Bytes()), CompressionFromPath(path))
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	rd, err := NewReader(stream, opts...)
	if err != nil {
		_ = stream.Close()
		_ = m.Close()
		return nil, err
	}

	return &File{Reader: rd, mapping: m, stream: stream}, nil
}

// Close releases the decompressor and the mapping.
func (f *File) Close() error {
	err := f.stream.Close()
	if cerr := f.mapping.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadFile reads the matrix stored at path into a.
func ReadFile(path string, a *arena.Arena, opts ...Option) (*coo.Matrix, Header, error) {
	f, err := Open(path, opts...)
	if err != nil {
		return nil, Header{}, err
	}
	defer func() { _ = f.Close() }()

	m, err := f.ReadMatrix(a)
	return m, f.Header(), err
}
