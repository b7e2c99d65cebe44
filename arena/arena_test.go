package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spmv/internal/errs"
	"github.com/hupe1980/spmv/internal/resource"
)

func newArena(t *testing.T, capacity int, opts ...Option) *Arena {
	t.Helper()
	a, err := New(capacity, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Free() })
	return a
}

func TestArena_New(t *testing.T) {
	t.Run("mapped", func(t *testing.T) {
		a := newArena(t, 4096)
		assert.Equal(t, 4096, a.Capacity())
		assert.Equal(t, 4096, a.Remaining())
		assert.Equal(t, uint32(1), a.Generation())
	})

	t.Run("heap", func(t *testing.T) {
		a := newArena(t, 4096, WithHeap())
		assert.Equal(t, 4096, a.Capacity())
	})

	t.Run("negative capacity", func(t *testing.T) {
		_, err := New(-1)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("bad alignment", func(t *testing.T) {
		_, err := New(64, WithAlignment(3))
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}

func TestArena_AllocZeroed(t *testing.T) {
	a := newArena(t, 1024)

	h, s, err := AllocSlice[float64](a, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, h.Len())
	assert.Equal(t, 128, h.Size())
	require.Len(t, s, 16)
	for i, v := range s {
		assert.Zero(t, v, "element %d", i)
	}
}

func TestArena_Alignment(t *testing.T) {
	a := newArena(t, 1024)

	_, err := a.Alloc(1, 3)
	require.NoError(t, err)

	h, s, err := AllocSlice[int64](a, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, h.Offset)
	assert.Zero(t, uintptr(unsafe.Pointer(&s[0]))%DefaultAlignment)

	stats := a.Stats()
	assert.Equal(t, 19, stats.BytesUsed)
	assert.Equal(t, 5, stats.BytesWasted)
	assert.Equal(t, 2, stats.TotalAllocs)
	assert.Equal(t, 24, stats.Offset)
}

func TestArena_OutOfMemory(t *testing.T) {
	a := newArena(t, 64)

	h, first, err := AllocSlice[int64](a, 4)
	require.NoError(t, err)
	for i := range first {
		first[i] = int64(i + 1)
	}

	_, err = a.Alloc(8, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrOutOfMemory)

	// The failed request must not move the bump pointer or touch prior data.
	assert.Equal(t, 32, a.Remaining())
	again, err := View[int64](a, h)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, again)

	// The remaining space is still usable.
	_, err = a.Alloc(8, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Remaining())

	_, err = a.Alloc(1, 1)
	assert.ErrorIs(t, err, errs.ErrOutOfMemory)
}

func TestArena_AllocInvalid(t *testing.T) {
	a := newArena(t, 64)

	_, err := a.Alloc(0, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = a.Alloc(8, -1)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = a.Alloc(1<<62, 4)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestArena_EmptyAllocation(t *testing.T) {
	a := newArena(t, 0)

	h, s, err := AllocSlice[float64](a, 0)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 0, h.Len())
}

func TestView_ElementSizeMismatch(t *testing.T) {
	a := newArena(t, 64)

	h, err := a.Alloc(4, 4)
	require.NoError(t, err)

	_, err = View[int64](a, h)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	s, err := View[int32](a, h)
	require.NoError(t, err)
	assert.Len(t, s, 4)
}

func TestArena_ResetInvalidatesHandles(t *testing.T) {
	a := newArena(t, 64)

	h, s, err := AllocSlice[int64](a, 2)
	require.NoError(t, err)
	s[0], s[1] = 7, 9

	a.Reset()
	assert.Equal(t, uint32(2), a.Generation())
	assert.Equal(t, 64, a.Remaining())

	_, err = a.Bytes(h)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, fresh, err := AllocSlice[int64](a, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, fresh, "reused memory must be zeroed")
}

func TestArena_Free(t *testing.T) {
	a, err := New(128)
	require.NoError(t, err)

	h, err := a.Alloc(8, 1)
	require.NoError(t, err)

	require.NoError(t, a.Free())
	require.NoError(t, a.Free(), "Free must be idempotent")

	_, err = a.Bytes(h)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = a.Alloc(8, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.Zero(t, a.Remaining())
}

func TestArena_MemoryAcquirer(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1000})

	a, err := New(600, WithMemoryAcquirer(rc), WithHeap())
	require.NoError(t, err)
	assert.Equal(t, int64(600), rc.MemoryUsage())

	_, err = New(600, WithMemoryAcquirer(rc), WithHeap())
	assert.ErrorIs(t, err, errs.ErrOutOfMemory)

	require.NoError(t, a.Free())
	assert.Zero(t, rc.MemoryUsage())

	b, err := New(600, WithMemoryAcquirer(rc), WithHeap())
	require.NoError(t, err)
	require.NoError(t, b.Free())
}

func TestArena_String(t *testing.T) {
	a := newArena(t, 1<<20)
	_, err := a.Alloc(8, 1024)
	require.NoError(t, err)

	assert.Contains(t, a.String(), "allocs: 1")
	assert.InDelta(t, 0.78125, a.Usage(), 1e-9)
}
