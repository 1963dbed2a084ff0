package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)

	w, err := NewWindow(Range{From: atp("2024-01-01 15:00"), To: atp("2024-01-05 09:00")}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, at("2024-01-01"), *w.Start)
	assert.Equal(t, at("2024-01-06").Add(-time.Nanosecond), *w.End)

	w, err = NewWindow(Range{From: atp("2024-03-10 12:00")}, lagos)
	require.NoError(t, err)
	assert.True(t, w.Contains(time.Date(2024, 3, 10, 0, 0, 0, 0, lagos)))
	assert.True(t, w.Contains(time.Date(2024, 3, 10, 23, 59, 59, 0, lagos)))
	assert.False(t, w.Contains(time.Date(2024, 3, 11, 0, 0, 0, 0, lagos)))
	assert.False(t, w.Contains(time.Date(2024, 3, 9, 23, 59, 0, 0, lagos)))

	w, err = NewWindow(Range{To: atp("2024-01-05")}, nil)
	require.NoError(t, err)
	assert.Nil(t, w.Start)
	assert.True(t, w.Contains(at("1999-01-01")))

	w, err = NewWindow(Range{}, time.UTC)
	require.NoError(t, err)
	assert.True(t, w.IsUnbounded())
}

func TestNewWindow_Inverted(t *testing.T) {
	_, err := NewWindow(Range{From: atp("2024-02-01"), To: atp("2024-01-01")}, time.UTC)
	assert.ErrorIs(t, err, ErrInvertedRange)

	// same day in a different order of hours is fine
	_, err = NewWindow(Range{From: atp("2024-02-01 18:00"), To: atp("2024-02-01 06:00")}, time.UTC)
	assert.NoError(t, err)
}
