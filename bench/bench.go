package bench

import (
	"context"
	"math"
	"time"

	"github.com/hupe1980/spmv/internal/errs"
)

const (
	// DefaultWarmup is the default number of warmup iterations.
	DefaultWarmup = 5
	// DefaultRuns is the default number of timed runs.
	DefaultRuns = 10
	// Resolution is the granularity samples are truncated to.
	Resolution = time.Microsecond
)

// Kernel is the operation under measurement.
type Kernel func() error

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the monotonic reading of the wall clock.
var SystemClock Clock = systemClock{}

// Observer is notified about every iteration after its timing completed.
type Observer interface {
	OnWarmup(i int, d time.Duration)
	OnRun(i int, d time.Duration)
}

// Config controls a benchmark.
type Config struct {
	Warmup   int
	Runs     int
	Clock    Clock
	Observer Observer
}

// DefaultConfig returns 5 warmup iterations and 10 runs on the system clock.
func DefaultConfig() Config {
	return Config{Warmup: DefaultWarmup, Runs: DefaultRuns, Clock: SystemClock}
}

// Validate checks the iteration counts.
func (c Config) Validate() error {
	if c.Warmup < 0 {
		return errs.New(errs.InvalidArgument, "bench.Config", "negative warmup %d", c.Warmup)
	}
	if c.Runs < 1 {
		return errs.New(errs.InvalidArgument, "bench.Config", "runs must be at least 1, got %d", c.Runs)
	}
	return nil
}

// Result holds the samples of a benchmark and their statistics.
type Result struct {
	Warmup  int
	Runs    int
	Samples []time.Duration
	Mean    time.Duration
	StdDev  time.Duration
	Min     time.Duration
	Max     time.Duration
}

// SamplesMicros returns the samples in whole microseconds.
func (r *Result) SamplesMicros() []int64 {
	out := make([]int64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Microseconds()
	}
	return out
}

// Run executes cfg.Warmup untimed and cfg.Runs timed calls of kernel. The
// first kernel error aborts the benchmark and is returned unchanged. ctx is
// checked between iterations only.
func Run(ctx context.Context, kernel Kernel, cfg Config) (*Result, error) {
	if kernel == nil {
		return nil, errs.New(errs.InvalidArgument, "bench.Run", "nil kernel")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}

	for i := range cfg.Warmup {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := clock.Now()
		if err := kernel(); err != nil {
			return nil, err
		}
		d := clock.Now().Sub(start)
		if cfg.Observer != nil {
			cfg.Observer.OnWarmup(i, d.Truncate(Resolution))
		}
	}

	samples := make([]time.Duration, cfg.Runs)
	for i := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := clock.Now()
		err := kernel()
		d := clock.Now().Sub(start)
		if err != nil {
			return nil, err
		}
		samples[i] = d.Truncate(Resolution)
		if cfg.Observer != nil {
			cfg.Observer.OnRun(i, samples[i])
		}
	}

	r := &Result{Warmup: cfg.Warmup, Runs: cfg.Runs, Samples: samples}
	r.Mean, r.StdDev, r.Min, r.Max = Summarize(samples)
	return r, nil
}

// Summarize returns the mean, population standard deviation, minimum and
// maximum of samples. Mean and deviation are rounded to Resolution.
func Summarize(samples []time.Duration) (mean, stddev, lo, hi time.Duration) {
	if len(samples) == 0 {
		return 0, 0, 0, 0
	}

	lo, hi = samples[0], samples[0]
	var sum float64
	for _, s := range samples {
		lo = min(lo, s)
		hi = max(hi, s)
		sum += float64(s)
	}
	m := sum / float64(len(samples))

	var sq float64
	for _, s := range samples {
		d := float64(s) - m
		sq += d * d
	}
	sd := math.Sqrt(sq / float64(len(samples)))

	return time.Duration(m).Round(Resolution), time.Duration(sd).Round(Resolution), lo, hi
}
