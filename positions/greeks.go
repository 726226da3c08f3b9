package positions

import (
	"math"

	"github.com/bcdannyboy/qengine/models"
)

const (
	percentPoint   = 100.0
	daysInYear     = 365.0
	fullDeltaValue = 1.0
)

// CalculateGreeks returns delta, gamma, vega, theta and rho for a European call.
// Every Greek is computed from the same d1/d2 pair.
func CalculateGreeks(c models.OptionContract) (models.Greeks, error) {
	if err := c.Validate(); err != nil {
		return models.Greeks{}, err
	}
	if c.Deterministic() || zeroDiffusion(c) || zeroPriceLevel(c) {
		return models.Greeks{Delta: boundaryDelta(c)}, nil
	}
	return greeksFromTerms(c, calculateBSMTerms(c)), nil
}

// boundaryDelta is a step function: the call either finishes in the money or it doesn't.
func boundaryDelta(c models.OptionContract) float64 {
	threshold := c.K
	if c.T > 0 {
		threshold = c.K * math.Exp(-c.R*c.T)
	}
	if c.S > threshold {
		return fullDeltaValue
	}
	return 0
}

func greeksFromTerms(c models.OptionContract, t bsmTerms) models.Greeks {
	pdfD1 := normPDF(t.d1)
	cdfD2 := normCDF(t.d2)

	gamma := pdfD1 / (c.S * c.Sigma * t.sqrtT)

	decay := -(c.S * pdfD1 * c.Sigma) / (2 * t.sqrtT)
	carry := c.R * c.K * t.discount * cdfD2

	return models.Greeks{
		Delta: normCDF(t.d1),
		Gamma: gamma,
		Vega:  c.S * pdfD1 * t.sqrtT / percentPoint,
		Theta: (decay - carry) / daysInYear,
		Rho:   c.K * c.T * t.discount * cdfD2 / percentPoint,
	}
}
