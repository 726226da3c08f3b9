package probability

import (
	"fmt"

	"github.com/bcdannyboy/qengine/models"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	minCorrelationSeries = 2
	minCorrelationPrices = 3
)

// CorrelationMatrix converts each price series to simple returns and returns the
// Pearson correlation across series. It needs at least two series, all sharing
// one length of at least three prices so every series contributes two or more
// return observations.
func CorrelationMatrix(priceSeries [][]float64) (models.CorrelationMatrix, error) {
	if len(priceSeries) < minCorrelationSeries {
		return nil, fmt.Errorf("%w: need at least %d price series, got %d", models.ErrInvalidInput, minCorrelationSeries, len(priceSeries))
	}
	length := len(priceSeries[0])
	if length < minCorrelationPrices {
		return nil, fmt.Errorf("%w: need at least %d prices per series, got %d", models.ErrInvalidInput, minCorrelationPrices, length)
	}

	observations := mat.NewDense(length-1, len(priceSeries), nil)
	for j, prices := range priceSeries {
		if len(prices) != length {
			return nil, fmt.Errorf("%w: series %d has %d prices, series 0 has %d", models.ErrInvalidInput, j, len(prices), length)
		}
		returns, err := SimpleReturns(prices)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", j, err)
		}
		if stat.Variance(returns, nil) == 0 {
			return nil, fmt.Errorf("%w: series %d has constant returns", models.ErrUndefinedResult, j)
		}
		observations.SetCol(j, returns)
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, observations, nil)

	n := corr.SymmetricDim()
	out := make(models.CorrelationMatrix, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = corr.At(i, j)
		}
		out[i][i] = 1
	}
	return out, nil
}
