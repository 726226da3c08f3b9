package probability

import (
	"testing"

	"github.com/bcdannyboy/qengine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationMatrix(t *testing.T) {
	a := []float64{100, 101, 103, 102, 105, 104}
	b := make([]float64, len(a))
	for i, p := range a {
		b[i] = 2 * p
	}
	// c moves against a on every step
	c := []float64{50, 49, 47, 48, 45, 46}

	m, err := CorrelationMatrix([][]float64{a, b, c})
	require.NoError(t, err)
	require.Len(t, m, 3)

	for i := range m {
		require.Len(t, m[i], 3)
		assert.Equal(t, 1.0, m[i][i])
		for j := range m[i] {
			assert.Equal(t, m[i][j], m[j][i])
			assert.GreaterOrEqual(t, m[i][j], -1-1e-12)
			assert.LessOrEqual(t, m[i][j], 1+1e-12)
		}
	}
	assert.InDelta(t, 1, m[0][1], 1e-12)
	assert.Less(t, m[0][2], -0.9)
}

func TestCorrelationMatrixErrors(t *testing.T) {
	tests := []struct {
		name   string
		series [][]float64
		want   error
	}{
		{"no series", nil, models.ErrInvalidInput},
		{"single series", [][]float64{{1, 2, 3}}, models.ErrInvalidInput},
		{"too short", [][]float64{{1, 2}, {3, 4}}, models.ErrInvalidInput},
		{"length mismatch", [][]float64{{1, 2, 3}, {1, 2, 3, 4}}, models.ErrInvalidInput},
		{"non-positive price", [][]float64{{1, 2, 3}, {1, 0, 3}}, models.ErrInvalidInput},
		{"constant returns", [][]float64{{1, 2, 3}, {5, 5, 5}}, models.ErrUndefinedResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CorrelationMatrix(tt.series)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
