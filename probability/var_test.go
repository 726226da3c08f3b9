package probability

import (
	"math"
	"testing"

	"github.com/bcdannyboy/qengine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformReturns is -0.49, -0.48, ..., 0.50 in shuffled order.
func uniformReturns() models.ReturnSeries {
	returns := make(models.ReturnSeries, 0, 100)
	for i := 100; i >= 1; i -= 2 {
		returns = append(returns, float64(i)/100-0.5)
	}
	for i := 1; i <= 100; i += 2 {
		returns = append(returns, float64(i)/100-0.5)
	}
	return returns
}

func TestValueAtRiskInterpolates(t *testing.T) {
	v, err := ValueAtRisk(models.ReturnSeries{0.03, -0.05, 0.04, -0.02, 0.01}, 0.8)
	require.NoError(t, err)
	assert.InDelta(t, -0.026, v, 1e-12)

	v95, err := ValueAtRisk(uniformReturns(), 0.95)
	require.NoError(t, err)
	assert.InDelta(t, -0.4405, v95, 1e-12)

	v99, err := ValueAtRisk(uniformReturns(), 0.99)
	require.NoError(t, err)
	assert.InDelta(t, -0.4801, v99, 1e-12)
}

func TestExpectedShortfallIncludesThreshold(t *testing.T) {
	es, err := ExpectedShortfall(uniformReturns(), 0.95)
	require.NoError(t, err)
	assert.InDelta(t, -0.47, es, 1e-12)

	es, err = ExpectedShortfall(uniformReturns(), 0.99)
	require.NoError(t, err)
	assert.InDelta(t, -0.49, es, 1e-12)

	// Every return equals the threshold, so the tail is the whole series.
	es, err = ExpectedShortfall(models.ReturnSeries{-0.01, -0.01, -0.01}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, -0.01, es)
}

func TestSingleReturn(t *testing.T) {
	report, err := Assess(models.ReturnSeries{-0.03}, 0.99)
	require.NoError(t, err)
	assert.Equal(t, models.RiskReport{Confidence: 0.99, VaR: -0.03, ExpectedShortfall: -0.03}, report)
}

func TestTailOrdering(t *testing.T) {
	path, err := NewSeededSimulator(11).Simulate(100, 1, 0.05, 0.3, 20000)
	require.NoError(t, err)
	returns, err := ReturnsFromPath(path, 100)
	require.NoError(t, err)

	r95, err := Assess(returns, 0.95)
	require.NoError(t, err)
	r99, err := Assess(returns, 0.99)
	require.NoError(t, err)

	assert.LessOrEqual(t, r95.ExpectedShortfall, r95.VaR)
	assert.LessOrEqual(t, r99.ExpectedShortfall, r99.VaR)
	assert.LessOrEqual(t, r99.VaR, r95.VaR)
}

func TestAssessMatchesSeparateCalls(t *testing.T) {
	returns := uniformReturns()
	report, err := Assess(returns, 0.9)
	require.NoError(t, err)

	v, err := ValueAtRisk(returns, 0.9)
	require.NoError(t, err)
	es, err := ExpectedShortfall(returns, 0.9)
	require.NoError(t, err)
	assert.Equal(t, v, report.VaR)
	assert.Equal(t, es, report.ExpectedShortfall)
}

func TestRiskInputIsNotMutated(t *testing.T) {
	returns := models.ReturnSeries{0.3, -0.1, 0.2}
	_, err := ValueAtRisk(returns, 0.95)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnSeries{0.3, -0.1, 0.2}, returns)
}

func TestRiskRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		returns    models.ReturnSeries
		confidence float64
	}{
		{"empty", nil, 0.95},
		{"confidence zero", models.ReturnSeries{0.1}, 0},
		{"confidence one", models.ReturnSeries{0.1}, 1},
		{"confidence NaN", models.ReturnSeries{0.1}, math.NaN()},
		{"NaN return", models.ReturnSeries{0.1, math.NaN()}, 0.95},
		{"infinite return", models.ReturnSeries{0.1, math.Inf(-1)}, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValueAtRisk(tt.returns, tt.confidence)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			_, err = ExpectedShortfall(tt.returns, tt.confidence)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestTailMeanEmptyTail(t *testing.T) {
	es, err := tailMean([]float64{0.1, 0.2}, 0.05)
	assert.ErrorIs(t, err, models.ErrUndefinedResult)
	assert.True(t, math.IsNaN(es))
}

func TestMonteCarloRiskReport(t *testing.T) {
	path, err := NewSeededSimulator(5).Simulate(100, 1, 0.05, 0.2, 50000)
	require.NoError(t, err)

	report, err := MonteCarloRiskReport(path, 100)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(0.05)-1, report.MeanReturn, 0.005)
	assert.InDelta(t, 0.21, report.StdReturn, 0.01)
	assert.LessOrEqual(t, report.VaR99, report.VaR95)
	assert.LessOrEqual(t, report.ES95, report.VaR95)
	assert.LessOrEqual(t, report.ES99, report.VaR99)

	_, err = MonteCarloRiskReport(path, 0)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
