package mmio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spaolacci/murmur3"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/coo"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
)

const banner = "%%MatrixMarket"

// Option configures a Reader.
type Option func(*options)

type options struct {
	expandSymmetric bool
}

// WithoutSymmetricExpansion rejects symmetric and skew-symmetric files
// instead of mirroring their entries.
func WithoutSymmetricExpansion() Option {
	return func(o *options) { o.expandSymmetric = false }
}

// Reader parses a Matrix Market stream in two steps: NewReader consumes the
// banner and size line, ReadMatrix consumes the entries. Callers can size an
// arena from Header in between.
type Reader struct {
	r      *bufio.Reader
	opts   options
	header Header
	line   int
	done   bool
}

// NewReader parses the header of the stream r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	o := options{expandSymmetric: true}
	for _, opt := range opts {
		opt(&o)
	}

	rd := &Reader{r: bufio.NewReaderSize(r, 64*1024), opts: o}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	return rd, nil
}

// Header returns the parsed header.
func (rd *Reader) Header() Header { return rd.header }

func (rd *Reader) formatError(format string, args ...any) error {
	return errs.New(errs.InvalidFileFormat, "mmio.Read", "line %d: %s", rd.line, fmt.Sprintf(format, args...))
}

// nextLine returns the next line without its terminator. Lines are only valid
// until the next call.
func (rd *Reader) nextLine() ([]byte, error) {
	line, err := rd.r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		// Overlong line, fall back to an owned copy.
		buf := append([]byte(nil), line...)
		for err == bufio.ErrBufferFull {
			line, err = rd.r.ReadSlice('\n')
			buf = append(buf, line...)
		}
		line = buf
	}
	if err != nil && err != io.EOF {
		return nil, errs.Wrap(errs.FileIO, "mmio.Read", err)
	}
	if len(line) == 0 && err == io.EOF {
		return nil, io.EOF
	}
	rd.line++
	return bytes.TrimRight(line, "\r\n"), nil
}

// nextDataLine skips comments and blank lines.
func (rd *Reader) nextDataLine() ([][]byte, error) {
	for {
		line, err := rd.nextLine()
		if err != nil {
			return nil, err
		}
		if len(line) > 0 && line[0] == '%' {
			continue
		}
		fields := bytes.Fields(line)
		if len(fields) == 0 {
			continue
		}
		return fields, nil
	}
}

func (rd *Reader) readHeader() error {
	line, err := rd.nextLine()
	if err == io.EOF {
		return rd.formatError("missing %s banner", banner)
	}
	if err != nil {
		return err
	}

	fields := bytes.Fields(line)
	if len(fields) != 5 || !bytes.EqualFold(fields[0], []byte(banner)) {
		return rd.formatError("missing %s banner", banner)
	}
	if !bytes.EqualFold(fields[1], []byte("matrix")) {
		return rd.formatError("unsupported object %q", fields[1])
	}
	if !bytes.EqualFold(fields[2], []byte("coordinate")) {
		return rd.formatError("unsupported format %q", fields[2])
	}

	kind, ok := model.ParseKind(string(bytes.ToLower(fields[3])))
	if !ok {
		return rd.formatError("unsupported field %q", fields[3])
	}
	rd.header.Kind = kind

	switch string(bytes.ToLower(fields[4])) {
	case "general":
		rd.header.Symmetry = General
	case "symmetric":
		rd.header.Symmetry = Symmetric
	case "skew-symmetric":
		rd.header.Symmetry = SkewSymmetric
	default:
		return rd.formatError("unsupported symmetry %q", fields[4])
	}
	if rd.header.Symmetry != General && !rd.opts.expandSymmetric {
		return rd.formatError("%s storage is disabled", rd.header.Symmetry)
	}

	size, err := rd.nextDataLine()
	if err == io.EOF {
		return rd.formatError("missing size line")
	}
	if err != nil {
		return err
	}
	if len(size) != 3 {
		return rd.formatError("size line needs 3 fields, got %d", len(size))
	}

	var dims [3]int
	for i, f := range size {
		v, err := strconv.Atoi(string(f))
		if err != nil || v < 0 {
			return rd.formatError("invalid size %q", f)
		}
		dims[i] = v
	}
	rd.header.Rows, rd.header.Cols, rd.header.Entries = dims[0], dims[1], dims[2]

	if rd.header.Rows > math.MaxInt32 || rd.header.Cols > math.MaxInt32 {
		return rd.formatError("dimensions %dx%d exceed int32 indices", rd.header.Rows, rd.header.Cols)
	}
	if rd.header.Symmetry != General && rd.header.Rows != rd.header.Cols {
		return rd.formatError("%s matrix must be square, got %dx%d", rd.header.Symmetry, rd.header.Rows, rd.header.Cols)
	}
	return nil
}

func (rd *Reader) parseIndex(f []byte, limit int, what string) (int, error) {
	v, err := strconv.Atoi(string(f))
	if err != nil {
		return 0, rd.formatError("invalid %s index %q", what, f)
	}
	if v < 1 || v > limit {
		return 0, rd.formatError("%s index %d outside [1,%d]", what, v, limit)
	}
	return v - 1, nil
}

func (rd *Reader) parseInteger(f []byte) (int64, error) {
	s := string(f)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
		return 0, rd.formatError("invalid integer value %q", f)
	}
	return int64(x), nil
}

// ReadMatrix reads the entries into a new coordinate matrix allocated in a.
// The header's NonZeros and Fingerprint are set on success.
func (rd *Reader) ReadMatrix(a *arena.Arena) (*coo.Matrix, error) {
	if rd.done {
		return nil, errs.New(errs.InvalidArgument, "mmio.Read", "entries already read")
	}
	rd.done = true

	h := &rd.header

	var (
		b   *coo.Builder
		err error
	)
	if h.Symmetry == General {
		b, err = coo.NewBuilder(a, h.Rows, h.Cols, h.Entries, h.Kind)
	} else {
		b, err = coo.NewBoundedBuilder(a, h.Rows, h.Cols, h.MaxNonZeros(), h.Kind)
	}
	if err != nil {
		return nil, err
	}

	fp := newFingerprint()

	for k := 0; k < h.Entries; k++ {
		fields, err := rd.nextDataLine()
		if err == io.EOF {
			return nil, rd.formatError("expected %d entries, got %d", h.Entries, k)
		}
		if err != nil {
			return nil, err
		}
		if len(fields) != 3 {
			return nil, rd.formatError("entry needs 3 fields, got %d", len(fields))
		}

		row, err := rd.parseIndex(fields[0], h.Rows, "row")
		if err != nil {
			return nil, err
		}
		col, err := rd.parseIndex(fields[1], h.Cols, "column")
		if err != nil {
			return nil, err
		}
		mirror := h.Symmetry != General && row != col
		skewDiagonal := h.Symmetry == SkewSymmetric && row == col

		switch h.Kind {
		case model.Real:
			v, perr := strconv.ParseFloat(string(fields[2]), 64)
			if perr != nil {
				return nil, rd.formatError("invalid real value %q", fields[2])
			}
			if skewDiagonal && v != 0 {
				return nil, rd.formatError("skew-symmetric diagonal entry (%d,%d) must be zero", row+1, col+1)
			}
			if err := b.AddReal(row, col, v); err != nil {
				return nil, err
			}
			fp.addReal(row, col, v)
			if mirror {
				if h.Symmetry == SkewSymmetric {
					v = -v
				}
				if err := b.AddReal(col, row, v); err != nil {
					return nil, err
				}
				fp.addReal(col, row, v)
			}
		case model.Integer:
			v, err := rd.parseInteger(fields[2])
			if err != nil {
				return nil, err
			}
			if skewDiagonal && v != 0 {
				return nil, rd.formatError("skew-symmetric diagonal entry (%d,%d) must be zero", row+1, col+1)
			}
			if err := b.AddInteger(row, col, v); err != nil {
				return nil, err
			}
			fp.addInteger(row, col, v)
			if mirror {
				if h.Symmetry == SkewSymmetric {
					v = -v
				}
				if err := b.AddInteger(col, row, v); err != nil {
					return nil, err
				}
				fp.addInteger(col, row, v)
			}
		}
	}

	if _, err := rd.nextDataLine(); err == nil {
		return nil, rd.formatError("more than %d entries", h.Entries)
	} else if err != io.EOF {
		return nil, err
	}

	m, err := b.Build()
	if err != nil {
		return nil, err
	}
	h.NonZeros = m.NZ
	h.Fingerprint = fp.sum(h)
	return m, nil
}

// Read parses a complete Matrix Market stream into a.
func Read(r io.Reader, a *arena.Arena, opts ...Option) (*coo.Matrix, Header, error) {
	rd, err := NewReader(r, opts...)
	if err != nil {
		return nil, Header{}, err
	}
	m, err := rd.ReadMatrix(a)
	if err != nil {
		return nil, rd.Header(), err
	}
	return m, rd.Header(), nil
}

type fingerprint struct {
	h   murmur3.Hash128
	buf [16]byte
}

func newFingerprint() *fingerprint {
	return &fingerprint{h: murmur3.New128()}
}

func (f *fingerprint) add(row, col int, bits uint64) {
	binary.LittleEndian.PutUint32(f.buf[0:], uint32(row)) //nolint:gosec // int32 range
	binary.LittleEndian.PutUint32(f.buf[4:], uint32(col)) //nolint:gosec // int32 range
	binary.LittleEndian.PutUint64(f.buf[8:], bits)
	_, _ = f.h.Write(f.buf[:])
}

func (f *fingerprint) addReal(row, col int, v float64) { f.add(row, col, math.Float64bits(v)) }

func (f *fingerprint) addInteger(row, col int, v int64) { f.add(row, col, uint64(v)) } //nolint:gosec // bit pattern

func (f *fingerprint) sum(h *Header) string {
	var dims [17]byte
	binary.LittleEndian.PutUint64(dims[0:], uint64(h.Rows)) //nolint:gosec // non-negative
	binary.LittleEndian.PutUint64(dims[8:], uint64(h.Cols)) //nolint:gosec // non-negative
	dims[16] = byte(h.Kind)
	_, _ = f.h.Write(dims[:])
	hi, lo := f.h.Sum128()
	return fmt.Sprintf("%016x%016x", hi, lo)
}
