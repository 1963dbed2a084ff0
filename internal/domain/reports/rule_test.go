package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

func TestRatioRule_Default(t *testing.T) {
	rule, err := NewRatioRule("", types.NewMoney(75))
	require.NoError(t, err)

	tests := []struct {
		ratio string
		want  RatioStatus
	}{
		{"0", StatusGreen},
		{"75", StatusGreen},
		{"75.01", StatusRed},
		{"140", StatusRed},
	}
	for _, tt := range tests {
		got, err := rule.Status(types.MustMoney(tt.ratio))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.ratio)
	}
}

func TestRatioRule_Custom(t *testing.T) {
	rule, err := NewRatioRule("ratio >= threshold || ratio == 0.0", types.NewMoney(60))
	require.NoError(t, err)

	got, err := rule.Status(types.Zero())
	require.NoError(t, err)
	assert.Equal(t, StatusRed, got)

	got, err = rule.Status(types.NewMoney(59.9))
	require.NoError(t, err)
	assert.Equal(t, StatusGreen, got)
}

func TestRatioRule_Invalid(t *testing.T) {
	_, err := NewRatioRule("ratio >", types.NewMoney(75))
	assert.Error(t, err)

	_, err = NewRatioRule("ratio * 2.0", types.NewMoney(75))
	assert.Error(t, err)

	_, err = NewRatioRule("cost > 1.0", types.NewMoney(75))
	assert.Error(t, err)
}
