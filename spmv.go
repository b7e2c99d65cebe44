package spmv

import (
	"context"

	"github.com/hupe1980/spmv/internal/errs"
)

// Run loads path, benchmarks the multiply and releases all memory before it
// returns. On failure the error message is also available through
// LastErrorDetail.
func Run(ctx context.Context, path string, opts ...Option) (*Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p, err := load(ctx, path, o)
	if err != nil {
		return nil, recordFailure(err)
	}

	report, err := p.benchmark(ctx)
	if cerr := p.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, recordFailure(err)
	}

	errs.ClearDetail()
	return report, nil
}
