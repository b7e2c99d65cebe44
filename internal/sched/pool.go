package sched

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Body processes the half-open range [lo, hi).
type Body interface {
	Range(lo, hi int)
}

// RangeFunc adapts a function to Body.
type RangeFunc func(lo, hi int)

// Range calls f(lo, hi).
func (f RangeFunc) Range(lo, hi int) { f(lo, hi) }

// Pool is a fixed set of persistent worker goroutines.
type Pool struct {
	numWorkers int
	workC      chan int
	closeOnce  sync.Once
	closed     atomic.Bool

	mu      sync.Mutex // serializes For and Close
	barrier sync.WaitGroup
	part    partition
	body    Body
}

// NewPool starts numWorkers workers. numWorkers <= 0 uses GOMAXPROCS.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan int, numWorkers),
	}

	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for w := range p.workC {
		p.run(w)
		p.barrier.Done()
	}
}

func (p *Pool) run(w int) {
	for k := 0; ; k++ {
		lo, hi, ok := p.part.claim(w, k)
		if !ok {
			return
		}
		p.body.Range(lo, hi)
	}
}

// NumWorkers returns the pool size.
func (p *Pool) NumWorkers() int { return p.numWorkers }

// Close stops the workers. A closed pool runs loops on the caller goroutine.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.closed.Store(true)
		close(p.workC)
	})
}

// For partitions [0, n) with policy and calls body for every range. It
// returns after all ranges were processed. Each index is covered exactly once.
func (p *Pool) For(n int, policy Policy, body Body) {
	if n <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	workers := min(p.numWorkers, n)
	if p.closed.Load() {
		workers = 1
	}

	p.body = body
	p.part.reset(policy, n, workers)

	if workers == 1 {
		p.run(0)
		p.body = nil
		return
	}

	p.barrier.Add(workers)
	for w := range workers {
		p.workC <- w
	}
	p.barrier.Wait()
	p.body = nil
}
