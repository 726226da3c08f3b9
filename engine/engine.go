// Package engine exposes the pricing and risk operations as a narrow API of
// plain numeric inputs and outputs. An Engine is safe for concurrent use.
package engine

import (
	"sync/atomic"

	"github.com/bcdannyboy/qengine/models"
	"github.com/bcdannyboy/qengine/positions"
	"github.com/bcdannyboy/qengine/probability"
	"github.com/bcdannyboy/qengine/ranking"
	"go.uber.org/zap"
)

type Config struct {
	// Seed is the base seed; each simulation call derives its own generator from it.
	Seed uint64
}

type Engine struct {
	seed  uint64
	calls atomic.Uint64
	log   *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{seed: cfg.Seed, log: log.Named("engine")}
}

func (e *Engine) Price(S, K, T, r, sigma float64) (float64, error) {
	price, err := positions.Price(models.OptionContract{S: S, K: K, T: T, R: r, Sigma: sigma})
	return price, e.rejected("price", err)
}

func (e *Engine) Greeks(S, K, T, r, sigma float64) (models.Greeks, error) {
	greeks, err := positions.CalculateGreeks(models.OptionContract{S: S, K: K, T: T, R: r, Sigma: sigma})
	return greeks, e.rejected("greeks", err)
}

// Simulate draws n terminal prices from a generator private to this call.
func (e *Engine) Simulate(S, T, r, sigma float64, n int) (models.SamplePath, error) {
	path, err := e.simulator().Simulate(S, T, r, sigma, n)
	return path, e.rejected("simulate", err)
}

func (e *Engine) ValueAtRisk(returns []float64, confidence float64) (float64, error) {
	v, err := probability.ValueAtRisk(returns, confidence)
	return v, e.rejected("value_at_risk", err)
}

func (e *Engine) ExpectedShortfall(returns []float64, confidence float64) (float64, error) {
	es, err := probability.ExpectedShortfall(returns, confidence)
	return es, e.rejected("expected_shortfall", err)
}

func (e *Engine) CorrelationMatrix(priceSeries [][]float64) (models.CorrelationMatrix, error) {
	m, err := probability.CorrelationMatrix(priceSeries)
	return m, e.rejected("correlation_matrix", err)
}

func (e *Engine) TopK(candidates []models.Candidate, k int) ([]models.Candidate, error) {
	top, err := ranking.TopCandidates(candidates, k)
	return top, e.rejected("top_k", err)
}

// Evaluate prices the call and measures its outcome over n simulated terminal prices.
func (e *Engine) Evaluate(S, K, T, r, sigma float64, n int) (models.OptionEvaluation, error) {
	c := models.OptionContract{S: S, K: K, T: T, R: r, Sigma: sigma}
	eval, err := positions.Evaluate(c, e.simulator(), n)
	return eval, e.rejected("evaluate", err)
}

// MonteCarloRisk simulates n terminal prices and reports VaR and expected
// shortfall of the returns on spot at 95% and 99%.
func (e *Engine) MonteCarloRisk(S, T, r, sigma float64, n int) (models.MonteCarloRisk, error) {
	path, err := e.simulator().Simulate(S, T, r, sigma, n)
	if err != nil {
		return models.MonteCarloRisk{}, e.rejected("monte_carlo_risk", err)
	}
	report, err := probability.MonteCarloRiskReport(path, S)
	return report, e.rejected("monte_carlo_risk", err)
}

func (e *Engine) simulator() *probability.Simulator {
	return probability.NewSeededSimulator(probability.StreamSeed(e.seed, probability.StreamEngine, e.calls.Add(1)))
}

func (e *Engine) rejected(op string, err error) error {
	if err != nil {
		e.log.Debug("operation rejected", zap.String("op", op), zap.Error(err))
	}
	return err
}
