package bench

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spmv/internal/errs"
)

// fakeClock advances by the next step on every second reading, so each
// start/stop pair observes exactly one step.
type fakeClock struct {
	now   time.Time
	steps []time.Duration
	reads int
}

func (c *fakeClock) Now() time.Time {
	c.reads++
	if c.reads%2 == 0 && len(c.steps) > 0 {
		c.now = c.now.Add(c.steps[0])
		c.steps = c.steps[1:]
	}
	return c.now
}

type recorder struct {
	warmups []time.Duration
	runs    []time.Duration
}

func (r *recorder) OnWarmup(_ int, d time.Duration) { r.warmups = append(r.warmups, d) }
func (r *recorder) OnRun(_ int, d time.Duration)    { r.runs = append(r.runs, d) }

func us(v ...int) []time.Duration {
	out := make([]time.Duration, len(v))
	for i, x := range v {
		out[i] = time.Duration(x) * time.Microsecond
	}
	return out
}

func TestRun_Statistics(t *testing.T) {
	clock := &fakeClock{steps: append(us(1000, 1000), us(2, 4, 4, 4, 5, 5, 7, 9)...)}
	obs := &recorder{}

	calls := 0
	res, err := Run(context.Background(), func() error { calls++; return nil }, Config{
		Warmup:   2,
		Runs:     8,
		Clock:    clock,
		Observer: obs,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, calls)
	assert.Equal(t, 2, res.Warmup)
	assert.Equal(t, 8, res.Runs)
	assert.Equal(t, us(2, 4, 4, 4, 5, 5, 7, 9), res.Samples)
	assert.Equal(t, []int64{2, 4, 4, 4, 5, 5, 7, 9}, res.SamplesMicros())
	assert.Equal(t, 5*time.Microsecond, res.Mean)
	assert.Equal(t, 2*time.Microsecond, res.StdDev)
	assert.Equal(t, 2*time.Microsecond, res.Min)
	assert.Equal(t, 9*time.Microsecond, res.Max)

	assert.Equal(t, us(1000, 1000), obs.warmups)
	assert.Equal(t, res.Samples, obs.runs)
}

func TestRun_SingleRun(t *testing.T) {
	clock := &fakeClock{steps: us(42)}
	res, err := Run(context.Background(), func() error { return nil }, Config{Runs: 1, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, 42*time.Microsecond, res.Mean)
	assert.Equal(t, time.Duration(0), res.StdDev)
	assert.Equal(t, res.Min, res.Max)
}

func TestRun_Truncates(t *testing.T) {
	clock := &fakeClock{steps: []time.Duration{1999 * time.Nanosecond}}
	res, err := Run(context.Background(), func() error { return nil }, Config{Runs: 1, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, us(1), res.Samples)
}

func TestRun_KernelError(t *testing.T) {
	boom := errors.New("boom")

	t.Run("warmup", func(t *testing.T) {
		res, err := Run(context.Background(), func() error { return boom }, Config{Warmup: 1, Runs: 1})
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, res)
	})

	t.Run("timed", func(t *testing.T) {
		n := 0
		res, err := Run(context.Background(), func() error {
			n++
			if n == 3 {
				return boom
			}
			return nil
		}, Config{Runs: 5})
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, res)
		assert.Equal(t, 3, n)
	})
}

func TestRun_InvalidConfig(t *testing.T) {
	noop := func() error { return nil }

	_, err := Run(context.Background(), noop, Config{Runs: 0})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = Run(context.Background(), noop, Config{Warmup: -1, Runs: 1})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = Run(context.Background(), nil, DefaultConfig())
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, func() error { return nil }, DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_SystemClock(t *testing.T) {
	res, err := Run(context.Background(), func() error {
		time.Sleep(200 * time.Microsecond)
		return nil
	}, Config{Warmup: 1, Runs: 3})
	require.NoError(t, err)
	for _, s := range res.Samples {
		assert.GreaterOrEqual(t, s, 200*time.Microsecond)
		assert.Zero(t, s%time.Microsecond)
	}
	assert.LessOrEqual(t, res.Min, res.Mean)
	assert.GreaterOrEqual(t, res.Max, res.Mean)
}

func TestSummarize_Empty(t *testing.T) {
	m, s, lo, hi := Summarize(nil)
	assert.Zero(t, m)
	assert.Zero(t, s)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}
