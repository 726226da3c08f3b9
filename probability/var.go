package probability

import (
	"fmt"
	"math"
	"sort"

	"github.com/bcdannyboy/qengine/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ValueAtRisk returns the (1-confidence) quantile of returns using linear
// interpolation between closest ranks. The result is a return, so a loss
// threshold is typically negative.
func ValueAtRisk(returns models.ReturnSeries, confidence float64) (float64, error) {
	sorted, err := sortedReturns(returns, confidence)
	if err != nil {
		return 0, err
	}
	return percentile(sorted, 1-confidence), nil
}

// ExpectedShortfall is the mean of every return at or below the VaR threshold.
// An empty tail yields NaN and ErrUndefinedResult.
func ExpectedShortfall(returns models.ReturnSeries, confidence float64) (float64, error) {
	sorted, err := sortedReturns(returns, confidence)
	if err != nil {
		return 0, err
	}
	return tailMean(sorted, percentile(sorted, 1-confidence))
}

// Assess computes VaR and expected shortfall over one sort of the series.
func Assess(returns models.ReturnSeries, confidence float64) (models.RiskReport, error) {
	sorted, err := sortedReturns(returns, confidence)
	if err != nil {
		return models.RiskReport{}, err
	}
	threshold := percentile(sorted, 1-confidence)
	es, err := tailMean(sorted, threshold)
	if err != nil {
		return models.RiskReport{}, err
	}
	return models.RiskReport{
		Confidence:        confidence,
		VaR:               threshold,
		ExpectedShortfall: es,
	}, nil
}

// MonteCarloRiskReport converts a simulated path into returns relative to spot and
// reports the 95% and 99% tails alongside the return mean and standard deviation.
func MonteCarloRiskReport(path models.SamplePath, spot float64) (models.MonteCarloRisk, error) {
	returns, err := ReturnsFromPath(path, spot)
	if err != nil {
		return models.MonteCarloRisk{}, err
	}
	r95, err := Assess(returns, 0.95)
	if err != nil {
		return models.MonteCarloRisk{}, err
	}
	r99, err := Assess(returns, 0.99)
	if err != nil {
		return models.MonteCarloRisk{}, err
	}
	mean, variance := stat.PopMeanVariance(returns, nil)

	return models.MonteCarloRisk{
		VaR95:      r95.VaR,
		VaR99:      r99.VaR,
		ES95:       r95.ExpectedShortfall,
		ES99:       r99.ExpectedShortfall,
		MeanReturn: mean,
		StdReturn:  math.Sqrt(variance),
	}, nil
}

func sortedReturns(returns models.ReturnSeries, confidence float64) ([]float64, error) {
	if len(returns) == 0 {
		return nil, fmt.Errorf("%w: empty return series", models.ErrInvalidInput)
	}
	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("%w: confidence must be in (0,1), got %v", models.ErrInvalidInput, confidence)
	}
	if floats.HasNaN(returns) {
		return nil, fmt.Errorf("%w: return series contains NaN", models.ErrInvalidInput)
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)
	if math.IsInf(sorted[0], 0) || math.IsInf(sorted[len(sorted)-1], 0) {
		return nil, fmt.Errorf("%w: return series contains Inf", models.ErrInvalidInput)
	}
	return sorted, nil
}

// percentile expects sorted input and p in [0,1]; h = (n-1)p.
func percentile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// tailMean averages the sorted prefix at or below threshold.
func tailMean(sorted []float64, threshold float64) (float64, error) {
	n := sort.Search(len(sorted), func(i int) bool { return sorted[i] > threshold })
	if n == 0 {
		return math.NaN(), fmt.Errorf("%w: no returns at or below VaR %v", models.ErrUndefinedResult, threshold)
	}
	return floats.Sum(sorted[:n]) / float64(n), nil
}
