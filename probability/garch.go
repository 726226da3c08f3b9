package probability

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/qengine/models"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	minGARCHObservations = 20
	initialPersistence   = 0.9
	initialAlphaShare    = 0.1
)

// GARCHLogLikelihood is the Gaussian log-likelihood of demeaned returns under g,
// with the variance recursion started at the sample variance.
func GARCHLogLikelihood(g models.GARCH11, returns []float64) float64 {
	ll, _ := garchFilter(g, returns)
	return ll
}

// FitGARCH estimates GARCH(1,1) by maximum likelihood over log returns and
// forecasts the next-period volatility, annualized by periodsPerYear.
//
// The search runs Nelder-Mead over an unconstrained parameterization
// (omega = e^x0, persistence = logistic(x1), alpha share = logistic(x2)), so
// every candidate satisfies omega > 0, alpha, beta >= 0 and alpha+beta < 1.
func FitGARCH(returns []float64, periodsPerYear float64) (models.GARCHForecast, error) {
	if len(returns) < minGARCHObservations {
		return models.GARCHForecast{}, fmt.Errorf("%w: need at least %d returns, got %d", models.ErrInvalidInput, minGARCHObservations, len(returns))
	}
	if !(periodsPerYear > 0) || math.IsInf(periodsPerYear, 0) {
		return models.GARCHForecast{}, fmt.Errorf("%w: periods per year must be positive, got %v", models.ErrInvalidInput, periodsPerYear)
	}
	for _, r := range returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return models.GARCHForecast{}, fmt.Errorf("%w: returns must be finite", models.ErrInvalidInput)
		}
	}

	mean, variance := stat.MeanVariance(returns, nil)
	if variance == 0 {
		return models.GARCHForecast{}, fmt.Errorf("%w: returns have zero variance", models.ErrUndefinedResult)
	}
	demeaned := make([]float64, len(returns))
	for i, r := range returns {
		demeaned[i] = r - mean
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			ll, _ := garchFilter(garchFromUnconstrained(x), demeaned)
			if math.IsNaN(ll) {
				return math.Inf(1)
			}
			return -ll
		},
	}
	initial := []float64{
		math.Log(variance * (1 - initialPersistence)),
		logit(initialPersistence),
		logit(initialAlphaShare),
	}

	result, err := optimize.Minimize(problem, initial, nil, &optimize.NelderMead{})
	if err != nil {
		return models.GARCHForecast{}, fmt.Errorf("%w: garch fit: %v", models.ErrUndefinedResult, err)
	}

	params := garchFromUnconstrained(result.X)
	ll, next := garchFilter(params, demeaned)
	return models.GARCHForecast{
		Params:        params,
		LogLikelihood: ll,
		Volatility:    math.Sqrt(next * periodsPerYear),
	}, nil
}

// garchFilter runs the variance recursion and returns the log-likelihood and the
// one-step-ahead variance.
func garchFilter(g models.GARCH11, returns []float64) (float64, float64) {
	h := stat.Variance(returns, nil)
	var ll float64
	for _, r := range returns {
		ll += -0.5 * (math.Log(2*math.Pi) + math.Log(h) + r*r/h)
		h = g.Omega + g.Alpha*r*r + g.Beta*h
	}
	return ll, h
}

func garchFromUnconstrained(x []float64) models.GARCH11 {
	persistence := logistic(x[1])
	share := logistic(x[2])
	return models.GARCH11{
		Omega: math.Exp(x[0]),
		Alpha: persistence * share,
		Beta:  persistence * (1 - share),
	}
}

func logistic(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func logit(p float64) float64 { return math.Log(p / (1 - p)) }
