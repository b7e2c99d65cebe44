package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, ok := ParseKind(" Real ")
	assert.True(t, ok)
	assert.Equal(t, Real, k)

	k, ok = ParseKind("INTEGER")
	assert.True(t, ok)
	assert.Equal(t, Integer, k)

	_, ok = ParseKind("complex")
	assert.False(t, ok)
}

func TestKind_Text(t *testing.T) {
	b, err := Integer.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "integer", string(b))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("real")))
	assert.Equal(t, Real, k)

	assert.Error(t, k.UnmarshalText([]byte("pattern")))
	_, err = Kind(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "kind(9)", Kind(9).String())
}
