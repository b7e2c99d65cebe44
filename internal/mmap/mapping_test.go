package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_ReadClose(t *testing.T) {
	content := []byte("%%MatrixMarket matrix coordinate real general\n")
	path := filepath.Join(t.TempDir(), "m.mtx")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	m, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())
	assert.False(t, m.Writable())
	assert.NoError(t, m.Advise(AdviceSequential))

	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AdviceSequential), ErrClosed)
	assert.NoError(t, m.Close(), "Close must be idempotent")
}

func TestOpen_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.Nil(t, m.Bytes())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMapAnon(t *testing.T) {
	m, err := MapAnon(4096)
	require.NoError(t, err)
	defer m.Close()

	data := m.Bytes()
	require.Len(t, data, 4096)
	assert.True(t, m.Writable())
	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zero: %d", i, b)
		}
	}

	assert.NoError(t, m.Advise(AdviceWillNeed))
	data[0], data[4095] = 1, 2
	assert.Equal(t, byte(1), m.Bytes()[0])
	assert.Equal(t, byte(2), m.Bytes()[4095])
}

func TestMapAnon_InvalidSize(t *testing.T) {
	_, err := MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)

	m, err := MapAnon(0)
	require.NoError(t, err)
	assert.Nil(t, m.Bytes())
	assert.NoError(t, m.Close())
}
