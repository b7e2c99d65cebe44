// Command mmgen writes random sparse matrices in Matrix Market format.
//
// A single matrix is described by flags; a batch is read from a CSV file
// with the columns row, col, density and an optional filename.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/coo"
	"github.com/hupe1980/spmv/csr"
	"github.com/hupe1980/spmv/mmio"
	"github.com/hupe1980/spmv/model"
)

// job is one matrix to generate.
type job struct {
	cfg    coo.GenerateConfig
	output string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mmgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		rows    = fs.Int("m", 1000, "Number of rows")
		cols    = fs.Int("n", 1000, "Number of columns")
		density = fs.Float64("density", 0.1, "Share of stored entries in [0, 1]")
		kind    = fs.String("kind", "real", "Element kind: real or integer")
		lo      = fs.Float64("min", 0, "Lower value bound")
		hi      = fs.Float64("max", 1, "Upper value bound (exclusive for reals)")
		seed    = fs.Uint64("seed", 0, "Random seed, 0 = random")
		output  = fs.String("o", "", "Output file; .gz, .zst, .lz4 and .sz compress (default mm_matrix_<m>x<n>_density<d>.mtx)")
		batch   = fs.String("csv", "", "CSV file with row,col,density[,filename] columns")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "mmgen - random Matrix Market generator\n\n")
		fmt.Fprintf(stderr, "Usage: mmgen [-m rows] [-n cols] [-density d] [-kind real|integer] [-o file]\n")
		fmt.Fprintf(stderr, "       mmgen -csv specs.csv\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	k, ok := model.ParseKind(*kind)
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown kind %q\n", *kind)
		return 2
	}

	var jobs []job
	if *batch != "" {
		var err error
		if jobs, err = readJobs(*batch, k, *lo, *hi); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		cfg := coo.GenerateConfig{Rows: *rows, Cols: *cols, Density: *density, Kind: k, Min: *lo, Max: *hi}
		jobs = []job{{cfg: cfg, output: *output}}
	}

	r := newRand(*seed)
	for _, s := range jobs {
		if s.output == "" {
			s.output = defaultName(s.cfg)
		}
		nz, err := generate(r, s)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", s.output, err)
			return 1
		}
		fmt.Fprintf(stdout, "%s: %dx%d nnz=%d\n", s.output, s.cfg.Rows, s.cfg.Cols, nz)
	}
	return 0
}

func newRand(seed uint64) *rand.Rand {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, 0))
}

func defaultName(cfg coo.GenerateConfig) string {
	return fmt.Sprintf("mm_matrix_%dx%d_density%.2f.mtx", cfg.Rows, cfg.Cols, cfg.Density)
}

func generate(r *rand.Rand, s job) (int, error) {
	nz, err := s.cfg.NonZeros()
	if err != nil {
		return 0, err
	}
	capacity, err := csr.Footprint(s.cfg.Rows, s.cfg.Cols, nz)
	if err != nil {
		return 0, err
	}
	a, err := arena.New(capacity)
	if err != nil {
		return 0, err
	}
	defer a.Free()

	m, err := coo.Generate(a, r, s.cfg)
	if err != nil {
		return 0, err
	}
	if err := mmio.WriteFile(s.output, m); err != nil {
		return 0, err
	}
	return m.NZ, nil
}

func readJobs(path string, kind model.Kind, lo, hi float64) ([]job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"row", "col", "density"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}

	var jobs []job
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		m, err := strconv.Atoi(field("row"))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: row: %w", path, line, err)
		}
		n, err := strconv.Atoi(field("col"))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: col: %w", path, line, err)
		}
		d, err := strconv.ParseFloat(field("density"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: density: %w", path, line, err)
		}
		jobs = append(jobs, job{
			cfg:    coo.GenerateConfig{Rows: m, Cols: n, Density: d, Kind: kind, Min: lo, Max: hi},
			output: field("filename"),
		})
	}
	return jobs, nil
}
