package spmv

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/spmv/bench"
	"github.com/hupe1980/spmv/codec"
	"github.com/hupe1980/spmv/history"
	"github.com/hupe1980/spmv/internal/hostinfo"
)

// Unit is the time unit of every duration in a Report.
const Unit = "us"

// Host describes the machine a report was produced on.
type Host = hostinfo.Host

// MatrixInfo describes the benchmarked matrix.
type MatrixInfo struct {
	Rows            int     `json:"rows" yaml:"rows"`
	Cols            int     `json:"cols" yaml:"cols"`
	NonZeros        int     `json:"nonzeros" yaml:"nonzeros"`
	Entries         int     `json:"entries" yaml:"entries"`
	Kind            string  `json:"kind" yaml:"kind"`
	Symmetry        string  `json:"symmetry" yaml:"symmetry"`
	Fingerprint     string  `json:"fingerprint" yaml:"fingerprint"`
	EmptyRows       int     `json:"empty_rows" yaml:"empty_rows"`
	MaxRowNonZeros  int     `json:"max_row_nonzeros" yaml:"max_row_nonzeros"`
	MeanRowNonZeros float64 `json:"mean_row_nonzeros" yaml:"mean_row_nonzeros"`
	DistinctColumns int     `json:"distinct_columns" yaml:"distinct_columns"`
}

// Report is the result document of one benchmark. Samples and statistics
// are whole microseconds.
type Report struct {
	RunID     string     `json:"run_id" yaml:"run_id"`
	StartedAt time.Time  `json:"started_at" yaml:"started_at"`
	Input     string     `json:"input" yaml:"input"`
	Matrix    MatrixInfo `json:"matrix" yaml:"matrix"`
	Threads   int        `json:"threads" yaml:"threads"`
	Policy    string     `json:"policy" yaml:"policy"`
	Chunk     int        `json:"chunk" yaml:"chunk"`
	Seed      uint64     `json:"seed" yaml:"seed"`

	WarmupIterations int     `json:"warmup_iterations" yaml:"warmup_iterations"`
	Runs             int     `json:"runs" yaml:"runs"`
	Unit             string  `json:"unit" yaml:"unit"`
	Samples          []int64 `json:"samples" yaml:"samples"`
	Mean             int64   `json:"mean" yaml:"mean"`
	StdDev           int64   `json:"stddev" yaml:"stddev"`
	Min              int64   `json:"min" yaml:"min"`
	Max              int64   `json:"max" yaml:"max"`
	// GFLOPS counts one multiply and one add per stored entry at the mean.
	GFLOPS float64 `json:"gflops" yaml:"gflops"`

	Host Host `json:"host" yaml:"host"`
}

type multiplierInfo interface {
	Threads() int
	Policy() Policy
}

func newReport(p *Problem, mp multiplierInfo, res *bench.Result, started time.Time) *Report {
	policy := mp.Policy()
	r := &Report{
		RunID:     uuid.NewString(),
		StartedAt: started.UTC(),
		Input:     p.Input,
		Matrix:    matrixInfo(p),
		Threads:   mp.Threads(),
		Policy:    policy.Kind.String(),
		Chunk:     policy.EffectiveChunk(),
		Seed:      p.Seed,

		WarmupIterations: res.Warmup,
		Runs:             res.Runs,
		Unit:             Unit,
		Samples:          res.SamplesMicros(),
		Mean:             res.Mean.Microseconds(),
		StdDev:           res.StdDev.Microseconds(),
		Min:              res.Min.Microseconds(),
		Max:              res.Max.Microseconds(),

		Host: hostinfo.Detect(),
	}
	r.GFLOPS = gflops(r.Matrix.NonZeros, res.Mean)
	return r
}

func matrixInfo(p *Problem) MatrixInfo {
	return MatrixInfo{
		Rows:            p.Matrix.M,
		Cols:            p.Matrix.N,
		NonZeros:        p.Matrix.NZ,
		Entries:         p.Header.Entries,
		Kind:            p.Matrix.Kind.String(),
		Symmetry:        p.Header.Symmetry.String(),
		Fingerprint:     p.Header.Fingerprint,
		EmptyRows:       p.Stats.EmptyRows,
		MaxRowNonZeros:  p.Stats.MaxRowNonZeros,
		MeanRowNonZeros: p.Stats.MeanRowNonZeros,
		DistinctColumns: p.Stats.DistinctColumns,
	}
}

func gflops(nonzeros int, mean time.Duration) float64 {
	if mean <= 0 {
		return 0
	}
	return 2 * float64(nonzeros) / mean.Seconds() / 1e9
}

// FileName returns the default object name of the report for c.
func (r *Report) FileName(c codec.Codec) string {
	if c == nil {
		c = codec.Default
	}
	return "spmv-" + r.RunID + c.Extension()
}

// Encode serializes the report with c, or codec.Default when c is nil.
func (r *Report) Encode(c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	return c.Marshal(r)
}

// DecodeReport parses a report produced by Encode.
func DecodeReport(c codec.Codec, data []byte) (*Report, error) {
	if c == nil {
		c = codec.Default
	}
	var r Report
	if err := c.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// Record converts the report into a history entry.
func (r *Report) Record() history.Record {
	return history.Record{
		RunID:       r.RunID,
		StartedAt:   r.StartedAt,
		Input:       r.Input,
		Fingerprint: r.Matrix.Fingerprint,
		Rows:        r.Matrix.Rows,
		Cols:        r.Matrix.Cols,
		NonZeros:    r.Matrix.NonZeros,
		Kind:        r.Matrix.Kind,
		Threads:     r.Threads,
		Policy:      r.policyString(),
		Warmup:      r.WarmupIterations,
		Runs:        r.Runs,
		Samples:     r.Samples,
		Mean:        r.Mean,
		StdDev:      r.StdDev,
		Min:         r.Min,
		Max:         r.Max,
	}
}

// String returns a one-line summary.
func (r *Report) String() string {
	return fmt.Sprintf("%dx%d nnz=%d threads=%d policy=%s runs=%d mean=%d%s stddev=%d%s min=%d%s max=%d%s",
		r.Matrix.Rows, r.Matrix.Cols, r.Matrix.NonZeros, r.Threads, r.policyString(), r.Runs,
		r.Mean, r.Unit, r.StdDev, r.Unit, r.Min, r.Unit, r.Max, r.Unit)
}

func (r *Report) policyString() string {
	if r.Chunk == 0 {
		return r.Policy
	}
	return fmt.Sprintf("%s,%d", r.Policy, r.Chunk)
}
