package spmv

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleMatrix = `%%MatrixMarket matrix coordinate real general
% 3x3 example
3 3 4
1 1 1.0
1 3 2.0
2 2 3.0
3 1 4.0
`

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func writeMatrix(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testOptions(extra ...Option) []Option {
	opts := []Option{
		WithHeapArena(),
		WithSeed(42),
		WithWarmup(1),
		WithRuns(3),
		WithClock(&stepClock{step: 10 * time.Microsecond}),
	}
	return append(opts, extra...)
}

func TestRun(t *testing.T) {
	path := writeMatrix(t, "m.mtx", exampleMatrix)

	report, err := Run(context.Background(), path, testOptions(WithThreads(2), WithPolicy(DynamicPolicy(0)))...)
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, path, report.Input)
	assert.Equal(t, 3, report.Matrix.Rows)
	assert.Equal(t, 3, report.Matrix.Cols)
	assert.Equal(t, 4, report.Matrix.NonZeros)
	assert.Equal(t, "real", report.Matrix.Kind)
	assert.Equal(t, "general", report.Matrix.Symmetry)
	assert.Len(t, report.Matrix.Fingerprint, 32)
	assert.Equal(t, 0, report.Matrix.EmptyRows)
	assert.Equal(t, 2, report.Matrix.MaxRowNonZeros)

	assert.Equal(t, 2, report.Threads)
	assert.Equal(t, "dynamic", report.Policy)
	assert.Equal(t, 16, report.Chunk)
	assert.Equal(t, uint64(42), report.Seed)

	assert.Equal(t, 1, report.WarmupIterations)
	assert.Equal(t, 3, report.Runs)
	assert.Equal(t, "us", report.Unit)
	assert.Equal(t, []int64{10, 10, 10}, report.Samples)
	assert.Equal(t, int64(10), report.Mean)
	assert.Equal(t, int64(0), report.StdDev)
	assert.Equal(t, int64(10), report.Min)
	assert.Equal(t, int64(10), report.Max)
	assert.InDelta(t, 0.0008, report.GFLOPS, 1e-12)
	assert.NotEmpty(t, report.Host.OS)
	assert.Empty(t, LastErrorDetail())
}

func TestLoad_Benchmark(t *testing.T) {
	path := writeMatrix(t, "m.mtx", exampleMatrix)

	p, err := Load(context.Background(), path, testOptions(WithRange(-1, 1))...)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 4, p.Header.NonZeros)
	require.NoError(t, p.Matrix.Validate())

	_, err = p.Benchmark(context.Background())
	require.NoError(t, err)

	x, err := p.X.Reals()
	require.NoError(t, err)
	for _, v := range x {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
	y, err := p.Y.Reals()
	require.NoError(t, err)
	assert.InDelta(t, x[0]+2*x[2], y[0], 1e-12)
	assert.InDelta(t, 3*x[1], y[1], 1e-12)
	assert.InDelta(t, 4*x[0], y[2], 1e-12)
}

func TestLoad_SeedIsDeterministic(t *testing.T) {
	path := writeMatrix(t, "m.mtx", exampleMatrix)

	load := func() []float64 {
		p, err := Load(context.Background(), path, testOptions()...)
		require.NoError(t, err)
		defer p.Close()
		x, err := p.X.Reals()
		require.NoError(t, err)
		return append([]float64(nil), x...)
	}
	assert.Equal(t, load(), load())
}

func TestLoad_RandomSeedIsRecorded(t *testing.T) {
	path := writeMatrix(t, "m.mtx", exampleMatrix)

	p, err := Load(context.Background(), path, WithHeapArena(), WithSeed(0))
	require.NoError(t, err)
	defer p.Close()
	assert.NotZero(t, p.Seed)
}

func TestRun_Integer(t *testing.T) {
	path := writeMatrix(t, "i.mtx", `%%MatrixMarket matrix coordinate integer symmetric
2 2 2
1 1 2
2 1 -3
`)
	p, err := Load(context.Background(), path, testOptions()...)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Benchmark(context.Background())
	require.NoError(t, err)

	x, err := p.X.Integers()
	require.NoError(t, err)
	y, err := p.Y.Integers()
	require.NoError(t, err)
	assert.Equal(t, 3, p.Matrix.NZ)
	assert.Equal(t, 2*x[0]-3*x[1], y[0])
	assert.Equal(t, -3*x[0], y[1])
}

func TestRun_Errors(t *testing.T) {
	good := writeMatrix(t, "m.mtx", exampleMatrix)
	sym := writeMatrix(t, "s.mtx", "%%MatrixMarket matrix coordinate real symmetric\n2 2 1\n2 1 1.5\n")
	bad := writeMatrix(t, "bad.mtx", "%%MatrixMarket matrix array real general\n2 2\n")

	tests := []struct {
		name string
		path string
		opts []Option
		want error
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.mtx"), nil, ErrFileIO},
		{"bad format", bad, nil, ErrInvalidFileFormat},
		{"symmetric disabled", sym, []Option{WithoutSymmetricExpansion()}, ErrInvalidFileFormat},
		{"zero runs", good, []Option{WithRuns(0)}, ErrInvalidArgument},
		{"negative warmup", good, []Option{WithWarmup(-1)}, ErrInvalidArgument},
		{"negative threads", good, []Option{WithThreads(-2)}, ErrInvalidArgument},
		{"bad range", good, []Option{WithRange(5, 1)}, ErrInvalidArgument},
		{"bad policy", good, []Option{WithPolicy(StaticPolicy(-1))}, ErrInvalidArgument},
		{"arena too small", good, []Option{WithArenaCapacity(64)}, ErrOutOfMemory},
		{"memory limit", good, []Option{WithResourceController(NewResourceController(ResourceConfig{MemoryLimitBytes: 16}))}, ErrOutOfMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{WithHeapArena()}, tt.opts...)
			report, err := Run(context.Background(), tt.path, opts...)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, err.Error(), LastErrorDetail())
		})
	}
}

func TestRun_ClearsDetailOnSuccess(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing.mtx"))
	require.Error(t, err)
	require.NotEmpty(t, LastErrorDetail())

	_, err = Run(context.Background(), writeMatrix(t, "m.mtx", exampleMatrix), testOptions()...)
	require.NoError(t, err)
	assert.Empty(t, LastErrorDetail())
}

func TestRun_Canceled(t *testing.T) {
	path := writeMatrix(t, "m.mtx", exampleMatrix)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, path, testOptions()...)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ReleasesMemoryBudget(t *testing.T) {
	path := writeMatrix(t, "m.mtx", exampleMatrix)
	rc := NewResourceController(ResourceConfig{MemoryLimitBytes: 1 << 20})

	_, err := Run(context.Background(), path, testOptions(WithResourceController(rc))...)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestRun_MetricsAndLogging(t *testing.T) {
	path := writeMatrix(t, "m.mtx", exampleMatrix)

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mc := &BasicMetricsCollector{}

	_, err := Run(context.Background(), path, testOptions(WithLogger(logger), WithMetricsCollector(mc))...)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(4), stats.LoadNonZeros)
	assert.Equal(t, int64(1), stats.ConvertCount)
	assert.Equal(t, int64(1), stats.WarmupCount)
	assert.Equal(t, int64(3), stats.RunCount)
	assert.Equal(t, int64(10*time.Microsecond), stats.RunAvgNanos)
	assert.Equal(t, 10*time.Microsecond, stats.RunMin)
	assert.Equal(t, 10*time.Microsecond, stats.RunMax)
	assert.Equal(t, int64(1), stats.BenchmarkCount)
	assert.Equal(t, 10*time.Microsecond, stats.LastMean)

	out := buf.String()
	assert.Contains(t, out, "matrix loaded")
	assert.Contains(t, out, "matrix converted")
	assert.Contains(t, out, "input vector filled")
	assert.Contains(t, out, "benchmark completed")
}

func TestKindOf(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing.mtx"))
	require.Error(t, err)
	assert.Equal(t, "file i/o", KindOf(err).String())
}
