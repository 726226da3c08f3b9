package models

import (
	"fmt"
	"math"
)

// OptionContract is a European call described by its five Black-Scholes inputs.
type OptionContract struct {
	S     float64 `json:"S"`     // Spot price
	K     float64 `json:"K"`     // Strike
	T     float64 `json:"T"`     // Time to expiry in years
	R     float64 `json:"r"`     // Continuously compounded risk-free rate
	Sigma float64 `json:"sigma"` // Annualized volatility
}

// Validate reports ErrInvalidInput for any out-of-domain field. r may be any finite real.
func (c OptionContract) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"S", c.S}, {"K", c.K}, {"T", c.T}, {"r", c.R}, {"sigma", c.Sigma},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidInput, f.name, f.value)
		}
	}
	if c.S < 0 {
		return fmt.Errorf("%w: S must be >= 0, got %v", ErrInvalidInput, c.S)
	}
	if c.K < 0 {
		return fmt.Errorf("%w: K must be >= 0, got %v", ErrInvalidInput, c.K)
	}
	if c.T < 0 {
		return fmt.Errorf("%w: T must be >= 0, got %v", ErrInvalidInput, c.T)
	}
	if c.Sigma < 0 {
		return fmt.Errorf("%w: sigma must be >= 0, got %v", ErrInvalidInput, c.Sigma)
	}
	return nil
}

// Deterministic reports whether the contract takes a non-stochastic valuation branch.
func (c OptionContract) Deterministic() bool {
	return c.T == 0 || c.Sigma == 0
}

// Greeks holds call sensitivities. Vega and Rho are per 1 percentage point,
// Theta is per calendar day.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// SamplePath is a set of simulated terminal prices.
type SamplePath []float64

// ReturnSeries is an ordered sequence of fractional returns.
type ReturnSeries []float64

// RiskReport pairs VaR and expected shortfall at one confidence level.
type RiskReport struct {
	Confidence        float64 `json:"confidence"`
	VaR               float64 `json:"var"`
	ExpectedShortfall float64 `json:"expected_shortfall"`
}

// CorrelationMatrix is square and symmetric with a unit diagonal.
type CorrelationMatrix [][]float64

// Candidate is an opaque payload ranked by Edge.
type Candidate struct {
	ID      string  `json:"id"`
	Payload any     `json:"payload,omitempty"`
	Edge    float64 `json:"edge"`
}

// SimulationSummary describes a sample path by its moments and leading samples.
type SimulationSummary struct {
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"std"`
	Sample []float64 `json:"sample"`
}

// MonteCarloRisk is the tail profile of returns relative to spot for a simulated path.
type MonteCarloRisk struct {
	VaR95      float64 `json:"var_95"`
	VaR99      float64 `json:"var_99"`
	ES95       float64 `json:"expected_shortfall_95"`
	ES99       float64 `json:"expected_shortfall_99"`
	MeanReturn float64 `json:"mean_return"`
	StdReturn  float64 `json:"std_return"`
}

// OptionEvaluation is a closed-form price and Greeks alongside the simulated outcome.
type OptionEvaluation struct {
	Contract         OptionContract `json:"contract"`
	Price            float64        `json:"bs_price"`
	Greeks           Greeks         `json:"greeks"`
	ProbabilityITM   float64        `json:"prob_profit"`
	ExpectedTerminal float64        `json:"expected_terminal"`
	ExpectedPayoff   float64        `json:"expected_payoff"`
}

// Bar is one period of open/high/low/close prices.
type Bar struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// RangeVolatility holds annualized range-based volatility estimates over one window.
type RangeVolatility struct {
	Window         string  `json:"window"`
	Days           int     `json:"days"`
	CloseToClose   float64 `json:"close_to_close"`
	Parkinson      float64 `json:"parkinson"`
	GarmanKlass    float64 `json:"garman_klass"`
	RogersSatchell float64 `json:"rogers_satchell"`
	YangZhang      float64 `json:"yang_zhang"`
}

// GARCH11 is sigma²_t = Omega + Alpha*r²_{t-1} + Beta*sigma²_{t-1}.
type GARCH11 struct {
	Omega float64 `json:"omega"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// GARCHForecast is a fitted GARCH(1,1) and its next-period annualized volatility.
type GARCHForecast struct {
	Params        GARCH11 `json:"params"`
	LogLikelihood float64 `json:"log_likelihood"`
	Volatility    float64 `json:"volatility"` // annualized
}
