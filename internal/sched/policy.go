package sched

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/spmv/internal/errs"
)

// Kind selects how rows are distributed across workers.
type Kind uint8

const (
	// Static assigns fixed blocks round-robin. Chunk 0 gives every worker one
	// contiguous block of ceil(n/workers) rows.
	Static Kind = iota
	// Dynamic lets workers claim fixed-size chunks from a shared counter.
	Dynamic
	// Guided lets workers claim chunks of ceil(remaining/workers) rows, never
	// smaller than Chunk.
	Guided
)

// DefaultDynamicChunk is the chunk used by Dynamic when none is given.
const DefaultDynamicChunk = 16

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Guided:
		return "guided"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Policy is a scheduling kind plus its chunk parameter.
type Policy struct {
	Kind  Kind
	Chunk int
}

// DefaultPolicy is static scheduling with one block per worker.
var DefaultPolicy = Policy{Kind: Static}

func (p Policy) String() string {
	if p.Chunk == 0 {
		return p.Kind.String()
	}
	return p.Kind.String() + "," + strconv.Itoa(p.Chunk)
}

// Validate checks the kind and chunk.
func (p Policy) Validate() error {
	if p.Kind > Guided {
		return errs.New(errs.InvalidArgument, "sched.Policy", "unknown kind %d", p.Kind)
	}
	if p.Chunk < 0 {
		return errs.New(errs.InvalidArgument, "sched.Policy", "negative chunk %d", p.Chunk)
	}
	return nil
}

// EffectiveChunk returns the chunk the policy schedules with.
func (p Policy) EffectiveChunk() int {
	switch {
	case p.Kind == Dynamic && p.Chunk == 0:
		return DefaultDynamicChunk
	case p.Kind == Guided && p.Chunk == 0:
		return 1
	default:
		return p.Chunk
	}
}

// ParsePolicy parses "kind" or "kind,chunk", e.g. "static", "dynamic,32" or
// "guided,8".
func ParsePolicy(s string) (Policy, error) {
	const op = "sched.ParsePolicy"

	name, chunk, hasChunk := strings.Cut(strings.TrimSpace(s), ",")

	var p Policy
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "static":
		p.Kind = Static
	case "dynamic":
		p.Kind = Dynamic
	case "guided":
		p.Kind = Guided
	default:
		return Policy{}, errs.New(errs.InvalidArgument, op, "unknown policy %q", name)
	}

	if hasChunk {
		c, err := strconv.Atoi(strings.TrimSpace(chunk))
		if err != nil {
			return Policy{}, errs.New(errs.InvalidArgument, op, "invalid chunk %q", chunk)
		}
		p.Chunk = c
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// partition hands out ranges of [0, n) according to a policy. It is reset
// before every parallel loop and shared by all workers of that loop.
type partition struct {
	kind    Kind
	chunk   int
	n       int
	workers int
	blocks  int // static: number of chunk-sized blocks in [0, n)
	next    atomic.Int64
}

func (p *partition) reset(policy Policy, n, workers int) {
	p.kind = policy.Kind
	p.chunk = policy.EffectiveChunk()
	p.n = n
	p.workers = workers
	p.next.Store(0)

	if p.kind == Static && p.chunk == 0 {
		p.chunk = (n + workers - 1) / workers
	}
	// A chunk never exceeds the range, so offsets below stay within n plus
	// one chunk per worker and cannot overflow.
	if n > 0 {
		p.chunk = min(p.chunk, n)
	}
	p.blocks = 0
	if p.chunk > 0 {
		p.blocks = (n + p.chunk - 1) / p.chunk
	}
}

// claim returns the k-th range of worker w. Static ignores the shared counter
// and derives the range from (w, k) alone.
func (p *partition) claim(w, k int) (lo, hi int, ok bool) {
	switch p.kind {
	case Static:
		b := k*p.workers + w
		if b >= p.blocks {
			return 0, 0, false
		}
		lo = b * p.chunk
	case Dynamic:
		lo = int(p.next.Add(int64(p.chunk))) - p.chunk
	case Guided:
		for {
			cur := p.next.Load()
			remaining := p.n - int(cur)
			if remaining <= 0 {
				return 0, 0, false
			}
			size := max((remaining+p.workers-1)/p.workers, p.chunk)
			if p.next.CompareAndSwap(cur, cur+int64(size)) {
				lo = int(cur)
				return lo, min(lo+size, p.n), true
			}
		}
	}
	if lo >= p.n {
		return 0, 0, false
	}
	return lo, min(lo+p.chunk, p.n), true
}
