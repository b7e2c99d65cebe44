package spmv

import (
	"github.com/hupe1980/spmv/bench"
	"github.com/hupe1980/spmv/internal/resource"
	"github.com/hupe1980/spmv/internal/sched"
	"github.com/hupe1980/spmv/vector"
)

// Policy selects how rows are distributed across workers.
type Policy = sched.Policy

// StaticPolicy assigns blocks of chunk rows round-robin. chunk 0 gives each
// worker one contiguous block.
func StaticPolicy(chunk int) Policy { return Policy{Kind: sched.Static, Chunk: chunk} }

// DynamicPolicy lets workers claim chunks of chunk rows. chunk 0 means 16.
func DynamicPolicy(chunk int) Policy { return Policy{Kind: sched.Dynamic, Chunk: chunk} }

// GuidedPolicy lets workers claim shrinking chunks of at least minChunk rows.
func GuidedPolicy(minChunk int) Policy { return Policy{Kind: sched.Guided, Chunk: minChunk} }

// ParsePolicy parses "static", "dynamic,32" or "guided,8".
func ParsePolicy(s string) (Policy, error) { return sched.ParsePolicy(s) }

// ResourceController bounds arena memory, concurrent sink uploads and upload
// throughput.
type ResourceController = resource.Controller

// ResourceConfig configures a ResourceController.
type ResourceConfig = resource.Config

// NewResourceController creates a controller.
func NewResourceController(cfg ResourceConfig) *ResourceController {
	return resource.NewController(cfg)
}

type options struct {
	threads          int
	policy           Policy
	warmup           int
	runs             int
	seed             uint64
	randMin          float64
	randMax          float64
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *ResourceController
	arenaCapacity    int
	heapArena        bool
	expandSymmetric  bool
	clock            bench.Clock
}

func defaultOptions() options {
	return options{
		policy:           sched.DefaultPolicy,
		warmup:           bench.DefaultWarmup,
		runs:             bench.DefaultRuns,
		randMin:          vector.DefaultRandMin,
		randMax:          vector.DefaultRandMax,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		expandSymmetric:  true,
		clock:            bench.SystemClock,
	}
}

// Option configures Run and Load.
type Option func(*options)

// WithThreads sets the worker count. 0 uses GOMAXPROCS.
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithPolicy sets the row scheduling policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithWarmup sets the number of discarded iterations.
func WithWarmup(n int) Option {
	return func(o *options) {
		o.warmup = n
	}
}

// WithRuns sets the number of timed iterations.
func WithRuns(n int) Option {
	return func(o *options) {
		o.runs = n
	}
}

// WithSeed fixes the seed of the input vector. 0 draws a random seed, which
// is recorded in the report.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithRange sets the input vector value range.
func WithRange(lo, hi float64) Option {
	return func(o *options) {
		o.randMin, o.randMax = lo, hi
	}
}

// WithLogger sets the logger. nil restores the no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector. nil restores the no-op
// collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController reserves arena memory against rc.
func WithResourceController(rc *ResourceController) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithArenaCapacity overrides the arena size derived from the file header.
func WithArenaCapacity(bytes int) Option {
	return func(o *options) {
		o.arenaCapacity = bytes
	}
}

// WithHeapArena backs the arena with a Go slice instead of an anonymous
// mapping.
func WithHeapArena() Option {
	return func(o *options) {
		o.heapArena = true
	}
}

// WithoutSymmetricExpansion rejects symmetric and skew-symmetric inputs
// instead of mirroring them.
func WithoutSymmetricExpansion() Option {
	return func(o *options) {
		o.expandSymmetric = false
	}
}

// WithClock replaces the benchmark clock.
func WithClock(c bench.Clock) Option {
	return func(o *options) {
		if c == nil {
			c = bench.SystemClock
		}
		o.clock = c
	}
}
