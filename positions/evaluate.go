package positions

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/qengine/models"
	"github.com/bcdannyboy/qengine/probability"
)

// Evaluate prices a call in closed form and measures its simulated outcome:
// the probability of finishing in the money, the mean terminal spot and the
// discounted mean payoff.
func Evaluate(c models.OptionContract, sim *probability.Simulator, n int) (models.OptionEvaluation, error) {
	if sim == nil {
		return models.OptionEvaluation{}, fmt.Errorf("%w: nil simulator", models.ErrInvalidInput)
	}
	price, err := Price(c)
	if err != nil {
		return models.OptionEvaluation{}, err
	}
	greeks, err := CalculateGreeks(c)
	if err != nil {
		return models.OptionEvaluation{}, err
	}
	path, err := sim.Simulate(c.S, c.T, c.R, c.Sigma, n)
	if err != nil {
		return models.OptionEvaluation{}, err
	}

	var itm int
	var terminal, payoff float64
	for _, sT := range path {
		if sT > c.K {
			itm++
			payoff += sT - c.K
		}
		terminal += sT
	}
	count := float64(len(path))

	return models.OptionEvaluation{
		Contract:         c,
		Price:            price,
		Greeks:           greeks,
		ProbabilityITM:   float64(itm) / count,
		ExpectedTerminal: terminal / count,
		ExpectedPayoff:   math.Exp(-c.R*c.T) * payoff / count,
	}, nil
}
