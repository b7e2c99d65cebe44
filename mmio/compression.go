package mmio

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/spmv/internal/errs"
)

// Compression identifies a stream compression format.
type Compression uint8

const (
	// CompressionNone is an uncompressed stream.
	CompressionNone Compression = iota
	// CompressionGzip is a gzip stream (.gz).
	CompressionGzip
	// CompressionZstd is a zstd stream (.zst).
	CompressionZstd
	// CompressionLZ4 is an lz4 frame stream (.lz4).
	CompressionLZ4
	// CompressionSnappy is a snappy framed stream (.sz).
	CompressionSnappy
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// CompressionFromPath derives the compression from the file extension.
func CompressionFromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	case ".sz":
		return CompressionSnappy
	default:
		return CompressionNone
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

func nopClose() error { return nil }

// Decompress wraps r so that reads return the decompressed stream.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	const op = "mmio.Decompress"

	switch c {
	case CompressionNone:
		return readCloser{Reader: r, close: nopClose}, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidFileFormat, op, err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidFileFormat, op, err)
		}
		return readCloser{Reader: zr, close: func() error { zr.Close(); return nil }}, nil
	case CompressionLZ4:
		return readCloser{Reader: lz4.NewReader(r), close: nopClose}, nil
	case CompressionSnappy:
		return readCloser{Reader: snappy.NewReader(r), close: nopClose}, nil
	default:
		return nil, errs.New(errs.InvalidArgument, op, "unknown compression %d", c)
	}
}

// Compress wraps w so that written bytes are compressed. Closing the returned
// writer flushes the compressor but does not close w.
func Compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	const op = "mmio.Compress"

	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, op, err)
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionSnappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, errs.New(errs.InvalidArgument, op, "unknown compression %d", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
