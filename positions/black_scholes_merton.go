package positions

import (
	"math"

	"github.com/bcdannyboy/qengine/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// bsmTerms carries the quantities shared by the price and every Greek so they are
// derived from a single d1/d2 pair.
type bsmTerms struct {
	d1       float64
	d2       float64
	sqrtT    float64
	discount float64 // e^{-rT}
}

// calculateBSMTerms must only be called when sigma*sqrt(T) > 0.
func calculateBSMTerms(c models.OptionContract) bsmTerms {
	sqrtT := math.Sqrt(c.T)
	d1 := (math.Log(c.S/c.K) + (c.R+0.5*c.Sigma*c.Sigma)*c.T) / (c.Sigma * sqrtT)
	return bsmTerms{
		d1:       d1,
		d2:       d1 - c.Sigma*sqrtT,
		sqrtT:    sqrtT,
		discount: math.Exp(-c.R * c.T),
	}
}

// Price values a European call under Black-Scholes.
//
// At expiry (T == 0) the value is the undiscounted intrinsic value. With zero
// volatility the terminal spot is known, so the value is the discounted
// deterministic payoff.
func Price(c models.OptionContract) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if c.T == 0 || zeroPriceLevel(c) {
		return math.Max(c.S-c.K, 0), nil
	}
	if zeroDiffusion(c) {
		return math.Max(c.S-c.K*math.Exp(-c.R*c.T), 0), nil
	}
	return priceFromTerms(c, calculateBSMTerms(c)), nil
}

// zeroDiffusion also catches sigma*sqrt(T) underflowing to 0 for a tiny positive sigma.
func zeroDiffusion(c models.OptionContract) bool {
	return c.Sigma*math.Sqrt(c.T) == 0
}

// zeroPriceLevel covers S == 0 (worthless underlying) and K == 0 (the call is the
// underlying), where ln(S/K) is unbounded.
func zeroPriceLevel(c models.OptionContract) bool {
	return c.S == 0 || c.K == 0
}

func priceFromTerms(c models.OptionContract, t bsmTerms) float64 {
	price := c.S*normCDF(t.d1) - c.K*t.discount*normCDF(t.d2)
	// Rounding can leave a deep out-of-the-money value a hair below zero.
	return math.Max(price, 0)
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
