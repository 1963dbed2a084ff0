package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptional(t *testing.T) {
	for _, in := range []string{"", "  ", "all", "ALL"} {
		got, err := ParseOptional(in)
		require.NoError(t, err, in)
		assert.Nil(t, got, in)
	}

	got, err := ParseOptional("0190a000-0000-7000-8000-0000000000a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, MustParse("0190a000-0000-7000-8000-0000000000a1"), *got)

	_, err = ParseOptional("ikeja")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	a := MustParse("0190a000-0000-7000-8000-000000000001")
	b := MustParse("0190a000-0000-7000-8000-000000000002")
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Zero(t, Compare(a, a))
}

func TestNewIsTimeOrdered(t *testing.T) {
	first := New()
	second := New()
	assert.Equal(t, 7, int(first.Version()))
	assert.LessOrEqual(t, Compare(first, second), 0)
}
