package spmv

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting benchmark metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// RecordRun is called once per timed iteration, after the clock stopped.
type MetricsCollector interface {
	// RecordLoad is called after reading the input matrix.
	RecordLoad(nonzeros int, duration time.Duration, err error)

	// RecordConvert is called after the compressed row conversion.
	RecordConvert(nonzeros int, duration time.Duration, err error)

	// RecordRun is called for every timed run. warmup is true for
	// discarded iterations.
	RecordRun(duration time.Duration, warmup bool)

	// RecordBenchmark is called once the statistics were computed.
	RecordBenchmark(runs int, mean time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordConvert(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordRun(time.Duration, bool)             {}
func (NoopMetricsCollector) RecordBenchmark(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount         atomic.Int64
	LoadErrors        atomic.Int64
	LoadNonZeros      atomic.Int64
	LoadTotalNanos    atomic.Int64
	ConvertCount      atomic.Int64
	ConvertErrors     atomic.Int64
	ConvertTotalNanos atomic.Int64
	WarmupCount       atomic.Int64
	RunCount          atomic.Int64
	RunTotalNanos     atomic.Int64
	BenchmarkCount    atomic.Int64
	BenchmarkErrors   atomic.Int64

	mu      sync.Mutex
	minRun  time.Duration
	maxRun  time.Duration
	lastAvg time.Duration
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(nonzeros int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadNonZeros.Add(int64(nonzeros))
}

// RecordConvert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConvert(_ int, duration time.Duration, err error) {
	b.ConvertCount.Add(1)
	b.ConvertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ConvertErrors.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(duration time.Duration, warmup bool) {
	if warmup {
		b.WarmupCount.Add(1)
		return
	}
	first := b.RunCount.Add(1) == 1
	b.RunTotalNanos.Add(duration.Nanoseconds())

	b.mu.Lock()
	if first || duration < b.minRun {
		b.minRun = duration
	}
	if first || duration > b.maxRun {
		b.maxRun = duration
	}
	b.mu.Unlock()
}

// RecordBenchmark implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBenchmark(_ int, mean time.Duration, err error) {
	b.BenchmarkCount.Add(1)
	if err != nil {
		b.BenchmarkErrors.Add(1)
		return
	}
	b.mu.Lock()
	b.lastAvg = mean
	b.mu.Unlock()
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	minRun, maxRun, lastMean := b.minRun, b.maxRun, b.lastAvg
	b.mu.Unlock()

	return BasicMetricsStats{
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
		LoadNonZeros:    b.LoadNonZeros.Load(),
		ConvertCount:    b.ConvertCount.Load(),
		ConvertErrors:   b.ConvertErrors.Load(),
		WarmupCount:     b.WarmupCount.Load(),
		RunCount:        b.RunCount.Load(),
		RunAvgNanos:     b.getAvgRunNanos(),
		RunMin:          minRun,
		RunMax:          maxRun,
		BenchmarkCount:  b.BenchmarkCount.Load(),
		BenchmarkErrors: b.BenchmarkErrors.Load(),
		LastMean:        lastMean,
	}
}

func (b *BasicMetricsCollector) getAvgRunNanos() int64 {
	count := b.RunCount.Load()
	if count == 0 {
		return 0
	}
	return b.RunTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount       int64
	LoadErrors      int64
	LoadNonZeros    int64
	ConvertCount    int64
	ConvertErrors   int64
	WarmupCount     int64
	RunCount        int64
	RunAvgNanos     int64
	RunMin          time.Duration
	RunMax          time.Duration
	BenchmarkCount  int64
	BenchmarkErrors int64
	LastMean        time.Duration
}

// metricsObserver forwards benchmark iterations to a collector.
type metricsObserver struct {
	mc MetricsCollector
}

func (o metricsObserver) OnWarmup(_ int, d time.Duration) { o.mc.RecordRun(d, true) }
func (o metricsObserver) OnRun(_ int, d time.Duration)    { o.mc.RecordRun(d, false) }
