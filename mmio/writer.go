package mmio

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/hupe1980/spmv/coo"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/model"
)

// Write encodes m as a general coordinate Matrix Market stream.
func Write(w io.Writer, m *coo.Matrix) error {
	const op = "mmio.Write"

	bw := bufio.NewWriterSize(w, 64*1024)

	buf := make([]byte, 0, 64)
	buf = append(buf, banner...)
	buf = append(buf, " matrix coordinate "...)
	buf = append(buf, m.Kind.String()...)
	buf = append(buf, " general\n"...)
	buf = strconv.AppendInt(buf, int64(m.M), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(m.N), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(m.NZ), 10)
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return errs.Wrap(errs.FileIO, op, err)
	}

	var werr error
	err := m.Triples(func(t coo.Triple) bool {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(t.Row)+1, 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(t.Col)+1, 10)
		buf = append(buf, ' ')
		if m.Kind == model.Real {
			buf = strconv.AppendFloat(buf, t.Real, 'g', -1, 64)
		} else {
			buf = strconv.AppendInt(buf, t.Integer, 10)
		}
		buf = append(buf, '\n')
		_, werr = bw.Write(buf)
		return werr == nil
	})
	if err != nil {
		return err
	}
	if werr != nil {
		return errs.Wrap(errs.FileIO, op, werr)
	}
	if err := bw.Flush(); err != nil {
		return errs.Wrap(errs.FileIO, op, err)
	}
	return nil
}

// WriteFile writes m to path, compressed according to the file extension.
func WriteFile(path string, m *coo.Matrix) (err error) {
	const op = "mmio.WriteFile"

	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.FileIO, op, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errs.Wrap(errs.FileIO, op, cerr)
		}
	}()

	cw, err := Compress(f, CompressionFromPath(path))
	if err != nil {
		return err
	}
	if err := Write(cw, m); err != nil {
		_ = cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return errs.Wrap(errs.FileIO, op, err)
	}
	return nil
}
