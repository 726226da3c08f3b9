package probability

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/qengine/models"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear annualizes daily close-to-close statistics.
const TradingDaysPerYear = 252

// SimpleReturns computes (p[i]-p[i-1])/p[i-1]. Every price must be positive and finite.
func SimpleReturns(prices []float64) (models.ReturnSeries, error) {
	if err := validatePrices(prices); err != nil {
		return nil, err
	}
	returns := make(models.ReturnSeries, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return returns, nil
}

// LogReturns computes ln(p[i]/p[i-1]).
func LogReturns(prices []float64) (models.ReturnSeries, error) {
	if err := validatePrices(prices); err != nil {
		return nil, err
	}
	returns := make(models.ReturnSeries, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = math.Log(prices[i] / prices[i-1])
	}
	return returns, nil
}

// ReturnsFromPath expresses each simulated terminal price as a fractional return on spot.
func ReturnsFromPath(path models.SamplePath, spot float64) (models.ReturnSeries, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty sample path", models.ErrInvalidInput)
	}
	if !(spot > 0) || math.IsInf(spot, 0) {
		return nil, fmt.Errorf("%w: spot must be positive and finite, got %v", models.ErrInvalidInput, spot)
	}
	returns := make(models.ReturnSeries, len(path))
	for i, price := range path {
		returns[i] = (price - spot) / spot
	}
	return returns, nil
}

// RealizedVolatility is the annualized sample standard deviation of log returns.
// Pass TradingDaysPerYear for daily closes.
func RealizedVolatility(prices []float64, periodsPerYear float64) (float64, error) {
	if !(periodsPerYear > 0) {
		return 0, fmt.Errorf("%w: periods per year must be positive, got %v", models.ErrInvalidInput, periodsPerYear)
	}
	returns, err := LogReturns(prices)
	if err != nil {
		return 0, err
	}
	if len(returns) < 2 {
		return 0, fmt.Errorf("%w: need at least 3 prices for a volatility estimate", models.ErrInvalidInput)
	}
	return stat.StdDev(returns, nil) * math.Sqrt(periodsPerYear), nil
}

func validatePrices(prices []float64) error {
	if len(prices) < 2 {
		return fmt.Errorf("%w: need at least 2 prices, got %d", models.ErrInvalidInput, len(prices))
	}
	for i, p := range prices {
		if !(p > 0) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: price %d must be positive and finite, got %v", models.ErrInvalidInput, i, p)
		}
	}
	return nil
}
