package spmv

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/spmv/arena"
	"github.com/hupe1980/spmv/bench"
	"github.com/hupe1980/spmv/csr"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/mmio"
	"github.com/hupe1980/spmv/vector"
)

// Problem is a loaded matrix in compressed row form together with a filled
// input vector and a result vector, all backed by one arena.
type Problem struct {
	Input  string
	Header mmio.Header
	Matrix *csr.Matrix
	Stats  csr.Stats
	X      *vector.Vector
	Y      *vector.Vector
	Seed   uint64

	arena *arena.Arena
	opts  options
}

func (o *options) validate() error {
	const op = "spmv.Options"
	if o.threads < 0 {
		return errs.New(errs.InvalidArgument, op, "negative thread count %d", o.threads)
	}
	if o.warmup < 0 {
		return errs.New(errs.InvalidArgument, op, "negative warmup %d", o.warmup)
	}
	if o.runs < 1 {
		return errs.New(errs.InvalidArgument, op, "runs must be at least 1, got %d", o.runs)
	}
	if o.arenaCapacity < 0 {
		return errs.New(errs.InvalidArgument, op, "negative arena capacity %d", o.arenaCapacity)
	}
	if !(o.randMin <= o.randMax) {
		return errs.New(errs.InvalidArgument, op, "invalid range [%g, %g]", o.randMin, o.randMax)
	}
	return o.policy.Validate()
}

// Load reads the Matrix Market file at path, converts it to compressed row
// form and prepares the vectors. The arena is sized from the header unless
// WithArenaCapacity is given. Close the problem to release it.
func Load(ctx context.Context, path string, opts ...Option) (*Problem, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p, err := load(ctx, path, o)
	return p, recordFailure(err)
}

func load(ctx context.Context, path string, o options) (*Problem, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	var readOpts []mmio.Option
	if !o.expandSymmetric {
		readOpts = append(readOpts, mmio.WithoutSymmetricExpansion())
	}

	start := time.Now()
	f, err := mmio.Open(path, readOpts...)
	if err != nil {
		o.logger.LogLoad(ctx, path, 0, 0, 0, 0, err)
		o.metricsCollector.RecordLoad(0, time.Since(start), err)
		return nil, err
	}
	defer f.Close()

	a, err := newArena(f.Header(), o)
	if err != nil {
		return nil, err
	}
	p := &Problem{Input: path, arena: a, opts: o}
	ok := false
	defer func() {
		if !ok {
			_ = a.Free()
		}
	}()

	cm, err := f.ReadMatrix(a)
	loadTime := time.Since(start)
	p.Header = f.Header()
	o.metricsCollector.RecordLoad(p.Header.NonZeros, loadTime, err)
	o.logger.LogLoad(ctx, path, p.Header.Rows, p.Header.Cols, p.Header.NonZeros, loadTime, err)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	p.Matrix, err = csr.FromCOO(a, cm)
	if err == nil {
		p.Stats, err = p.Matrix.Stats()
	}
	convertTime := time.Since(start)
	o.metricsCollector.RecordConvert(cm.NZ, convertTime, err)
	o.logger.LogConvert(ctx, cm.NZ, p.Stats.EmptyRows, convertTime, err)
	if err != nil {
		return nil, err
	}

	if p.X, err = vector.New(a, p.Matrix.N, p.Matrix.Kind); err != nil {
		return nil, err
	}
	if p.Y, err = vector.New(a, p.Matrix.M, p.Matrix.Kind); err != nil {
		return nil, err
	}

	p.Seed = o.seed
	for p.Seed == 0 {
		p.Seed = rand.Uint64()
	}
	if err := p.X.RandomFill(rand.New(rand.NewPCG(p.Seed, 0)), o.randMin, o.randMax); err != nil {
		return nil, err
	}
	o.logger.DebugContext(ctx, "input vector filled",
		"length", p.X.Len(),
		"seed", p.Seed,
		"arena", a.String(),
	)

	ok = true
	return p, nil
}

func newArena(h mmio.Header, o options) (*arena.Arena, error) {
	capacity := o.arenaCapacity
	if capacity == 0 {
		var err error
		if capacity, err = csr.Footprint(h.Rows, h.Cols, h.MaxNonZeros()); err != nil {
			return nil, err
		}
	}

	var aopts []arena.Option
	if o.heapArena {
		aopts = append(aopts, arena.WithHeap())
	}
	if o.resources != nil {
		aopts = append(aopts, arena.WithMemoryAcquirer(o.resources))
	}
	return arena.New(capacity, aopts...)
}

// Arena returns the arena backing the problem.
func (p *Problem) Arena() *arena.Arena { return p.arena }

// Close frees the arena. Views obtained from the problem become invalid.
func (p *Problem) Close() error {
	return p.arena.Free()
}

// Benchmark times the multiply with the options the problem was loaded with.
func (p *Problem) Benchmark(ctx context.Context) (*Report, error) {
	r, err := p.benchmark(ctx)
	return r, recordFailure(err)
}

func (p *Problem) benchmark(ctx context.Context) (*Report, error) {
	o := p.opts
	started := time.Now()

	mp, err := csr.NewMultiplier(o.threads, o.policy)
	if err != nil {
		return nil, err
	}
	defer mp.Close()

	cfg := bench.Config{
		Warmup:   o.warmup,
		Runs:     o.runs,
		Clock:    o.clock,
		Observer: metricsObserver{mc: o.metricsCollector},
	}
	res, err := bench.Run(ctx, func() error {
		return mp.MulVec(p.Matrix, p.X, p.Y)
	}, cfg)

	if err != nil {
		o.metricsCollector.RecordBenchmark(o.runs, 0, err)
		o.logger.LogBenchmark(ctx, mp.Threads(), o.runs, 0, 0, err)
		return nil, err
	}
	o.metricsCollector.RecordBenchmark(res.Runs, res.Mean, nil)
	o.logger.LogBenchmark(ctx, mp.Threads(), res.Runs, res.Mean, res.StdDev, nil)

	return newReport(p, mp, res, started), nil
}
