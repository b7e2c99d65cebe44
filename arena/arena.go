package arena

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/spmv/internal/conv"
	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/internal/mmap"
)

const (
	// DefaultAlignment is the default allocation alignment (8 bytes).
	DefaultAlignment = 8
)

// MemoryAcquirer reserves arena capacity against an external budget.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Stats tracks arena memory usage.
//
//   - Capacity: total bytes owned by the arena
//   - BytesUsed: bytes requested by allocations (before alignment)
//   - BytesWasted: padding added for alignment
//   - Offset: current bump offset
//   - TotalAllocs: allocation count since the last Reset
type Stats struct {
	Capacity    int
	BytesUsed   int
	BytesWasted int
	Offset      int
	TotalAllocs int
}

// Handle identifies one allocation inside an Arena.
type Handle struct {
	Gen      uint32
	Offset   int
	ElemSize int
	Count    int
}

// Len returns the number of elements.
func (h Handle) Len() int { return h.Count }

// Size returns the allocation size in bytes.
func (h Handle) Size() int { return h.ElemSize * h.Count }

// Arena is a fixed-capacity bump allocator.
type Arena struct {
	buf        []byte
	mapping    *mmap.Mapping
	capacity   int
	offset     int
	alignment  int
	generation uint32
	freed      bool
	heap       bool
	stats      Stats
	acquirer   MemoryAcquirer
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer reserves the arena capacity from acquirer on New and
// releases it on Free.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithAlignment sets the allocation alignment. It must be a power of two.
func WithAlignment(align int) Option {
	return func(a *Arena) {
		a.alignment = align
	}
}

// WithHeap backs the arena with a Go heap buffer instead of an anonymous mapping.
func WithHeap() Option {
	return func(a *Arena) {
		a.heap = true
	}
}

// New creates an Arena owning capacity bytes.
func New(capacity int, opts ...Option) (*Arena, error) {
	const op = "arena.New"

	if capacity < 0 {
		return nil, errs.New(errs.InvalidArgument, op, "negative capacity %d", capacity)
	}

	a := &Arena{
		capacity:   capacity,
		alignment:  DefaultAlignment,
		generation: 1,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.alignment <= 0 || a.alignment&(a.alignment-1) != 0 {
		return nil, errs.New(errs.InvalidArgument, op, "alignment %d is not a power of two", a.alignment)
	}

	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(capacity)); err != nil {
			return nil, errs.Wrapf(errs.OutOfMemory, op, err, "reserve %d bytes", capacity)
		}
	}

	if a.heap {
		a.buf = make([]byte, capacity)
	} else {
		m, err := mmap.MapAnon(capacity)
		if err != nil {
			if a.acquirer != nil {
				a.acquirer.ReleaseMemory(int64(capacity))
			}
			return nil, errs.Wrapf(errs.OutOfMemory, op, err, "map %d bytes", capacity)
		}
		a.mapping = m
		a.buf = m.Bytes()
	}

	a.stats.Capacity = capacity
	return a, nil
}

// Alloc reserves zero-initialized storage for count elements of elemSize
// bytes. It fails with an OutOfMemory error, leaving earlier allocations
// untouched, when the remaining capacity is too small.
func (a *Arena) Alloc(elemSize, count int) (Handle, error) {
	const op = "arena.Alloc"

	if a.freed {
		return Handle{}, errs.New(errs.InvalidArgument, op, "arena is freed")
	}
	if elemSize <= 0 {
		return Handle{}, errs.New(errs.InvalidArgument, op, "element size must be positive, got %d", elemSize)
	}
	if count < 0 {
		return Handle{}, errs.New(errs.InvalidArgument, op, "negative count %d", count)
	}

	size, err := conv.MulSize(elemSize, count)
	if err != nil {
		return Handle{}, errs.Wrap(errs.InvalidArgument, op, err)
	}

	mask := a.alignment - 1
	start := (a.offset + mask) &^ mask
	if start > a.capacity || size > a.capacity-start {
		return Handle{}, errs.New(errs.OutOfMemory, op,
			"need %d bytes, %d of %d remaining", size, a.Remaining(), a.capacity)
	}

	a.stats.BytesWasted += start - a.offset
	a.stats.BytesUsed += size
	a.stats.TotalAllocs++
	a.offset = start + size
	a.stats.Offset = a.offset

	return Handle{Gen: a.generation, Offset: start, ElemSize: elemSize, Count: count}, nil
}

// Bytes resolves h to its backing bytes.
func (a *Arena) Bytes(h Handle) ([]byte, error) {
	const op = "arena.Bytes"

	if a.freed || h.Gen != a.generation {
		return nil, errs.New(errs.InvalidArgument, op, "stale handle (generation %d, arena %d)", h.Gen, a.generation)
	}
	size := h.Size()
	if h.Offset < 0 || size < 0 || h.Offset+size > a.offset {
		return nil, errs.New(errs.InvalidArgument, op, "handle [%d,+%d) outside allocated region", h.Offset, size)
	}
	if h.Count == 0 {
		return nil, nil
	}
	end := h.Offset + size
	return a.buf[h.Offset:end:end], nil
}

// View resolves h to a typed slice of h.Count elements. T must be pointer-free
// and its size must equal h.ElemSize.
func View[T any](a *Arena, h Handle) ([]T, error) {
	var zero T
	if sz := int(unsafe.Sizeof(zero)); sz != h.ElemSize {
		return nil, errs.New(errs.InvalidArgument, "arena.View", "element size %d does not match handle size %d", sz, h.ElemSize)
	}
	b, err := a.Bytes(h)
	if err != nil || len(b) == 0 {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), h.Count), nil //nolint:gosec // unsafe is required for arena implementation
}

// AllocSlice allocates count zeroed elements of T and returns the handle
// together with the resolved view.
func AllocSlice[T any](a *Arena, count int) (Handle, []T, error) {
	var zero T
	h, err := a.Alloc(int(unsafe.Sizeof(zero)), count)
	if err != nil {
		return Handle{}, nil, err
	}
	s, err := View[T](a, h)
	if err != nil {
		return Handle{}, nil, err
	}
	return h, s, nil
}

// Capacity returns the total capacity in bytes.
func (a *Arena) Capacity() int { return a.capacity }

// Remaining returns the bytes still available for allocation, ignoring alignment.
func (a *Arena) Remaining() int {
	if a.freed {
		return 0
	}
	return a.capacity - a.offset
}

// Generation returns the current generation of the arena.
func (a *Arena) Generation() uint32 { return a.generation }

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats { return a.stats }

// Reset discards all allocations, zeroes the used region and invalidates
// outstanding handles. The capacity is kept.
func (a *Arena) Reset() {
	if a.freed {
		return
	}
	clear(a.buf[:a.offset])
	a.offset = 0
	a.generation++
	a.stats = Stats{Capacity: a.capacity}
}

// Free releases the arena memory and its budget reservation.
// All views obtained from the arena become invalid. Free is idempotent.
//
// After Free, the arena cannot be reused. Create a new arena instead.
func (a *Arena) Free() error {
	if a.freed {
		return nil
	}
	a.freed = true
	a.generation++

	var err error
	if a.mapping != nil {
		err = a.mapping.Close()
		a.mapping = nil
	}
	a.buf = nil

	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(a.capacity))
	}

	a.offset = 0
	a.stats = Stats{}
	return err
}

// Usage returns the used share of the capacity in percent.
func (a *Arena) Usage() float64 {
	if a.capacity == 0 {
		return 0
	}
	return float64(a.offset) / float64(a.capacity) * 100
}

func (a *Arena) String() string {
	return fmt.Sprintf(
		"Arena{capacity: %.2f MB, used: %.2f MB, wasted: %d B, usage: %.1f%%, allocs: %d}",
		float64(a.capacity)/(1024*1024),
		float64(a.stats.BytesUsed)/(1024*1024),
		a.stats.BytesWasted,
		a.Usage(),
		a.stats.TotalAllocs,
	)
}
