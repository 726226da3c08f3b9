package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bcdannyboy/qengine/config"
	"github.com/bcdannyboy/qengine/engine"
	"github.com/bcdannyboy/qengine/logging"
	"github.com/bcdannyboy/qengine/models"
	"github.com/bcdannyboy/qengine/probability"
	"github.com/shirou/gopsutil/cpu"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"
	"go.uber.org/zap"
)

const (
	summarySampleSize = 20
	stepsPerDay       = 8
	cpuSampleInterval = 5 * time.Second
)

// quote is one rung of the strike ladder: the model evaluation against the price
// implied by the market volatility.
type quote struct {
	Evaluation  models.OptionEvaluation `json:"evaluation"`
	MarketPrice float64                 `json:"market_price"`
}

type report struct {
	Config         *config.Config           `json:"config"`
	Simulation     models.SimulationSummary `json:"simulation"`
	MonteCarloRisk models.MonteCarloRisk    `json:"monte_carlo_risk"`
	HistoricalRisk models.RiskReport        `json:"historical_risk"`
	RealizedVol    float64                  `json:"realized_volatility"`
	RangeVol       []models.RangeVolatility `json:"range_volatility"`
	GARCH          *models.GARCHForecast    `json:"garch,omitempty"`
	Correlation    models.CorrelationMatrix `json:"correlation"`
	Opportunities  []models.Candidate       `json:"opportunities"`
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %s\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %s\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	eng := engine.New(engine.Config{Seed: cfg.Seed}, log)

	log.Info("pricing strike ladder",
		zap.Float64("spot", cfg.Spot),
		zap.Float64("rfr", cfg.RiskFreeRate),
		zap.Float64("model_vol", cfg.Volatility),
		zap.Float64("market_vol", cfg.MarketVol))

	candidates, err := priceLadder(eng, cfg, log)
	if err != nil {
		return err
	}
	top, err := eng.TopK(candidates, cfg.TopK)
	if err != nil {
		return fmt.Errorf("rank opportunities: %w", err)
	}

	path, err := probability.SimulateParallel(cfg.Spot, cfg.Expiry, cfg.RiskFreeRate, cfg.Volatility, cfg.Simulations, cfg.Workers, cfg.Seed)
	if err != nil {
		return fmt.Errorf("simulate terminal prices: %w", err)
	}
	summary, err := probability.Summarize(path, summarySampleSize)
	if err != nil {
		return err
	}
	mcRisk, err := probability.MonteCarloRiskReport(path, cfg.Spot)
	if err != nil {
		return fmt.Errorf("monte carlo risk: %w", err)
	}

	histories, err := simulateHistories(cfg)
	if err != nil {
		return err
	}
	series := make([][]float64, len(histories))
	for i, bars := range histories {
		series[i] = closes(bars)
	}
	returns, err := probability.SimpleReturns(series[0])
	if err != nil {
		return err
	}
	histRisk, err := probability.Assess(returns, cfg.Confidence)
	if err != nil {
		return fmt.Errorf("historical risk: %w", err)
	}
	realized, err := probability.RealizedVolatility(series[0], probability.TradingDaysPerYear)
	if err != nil {
		return err
	}
	rangeVol, err := probability.RangeVolatilities(histories[0])
	if err != nil {
		return fmt.Errorf("range volatility: %w", err)
	}
	corr, err := eng.CorrelationMatrix(series)
	if err != nil {
		return fmt.Errorf("correlation: %w", err)
	}

	var garch *models.GARCHForecast
	logReturns, err := probability.LogReturns(series[0])
	if err != nil {
		return err
	}
	if forecast, err := probability.FitGARCH(logReturns, probability.TradingDaysPerYear); err != nil {
		log.Warn("garch fit skipped", zap.Error(err))
	} else {
		garch = &forecast
		log.Debug("garch fitted",
			zap.Float64("alpha", forecast.Params.Alpha),
			zap.Float64("beta", forecast.Params.Beta),
			zap.Float64("volatility", forecast.Volatility))
	}

	out := report{
		Config:         cfg,
		Simulation:     summary,
		MonteCarloRisk: mcRisk,
		HistoricalRisk: histRisk,
		RealizedVol:    realized,
		RangeVol:       rangeVol,
		GARCH:          garch,
		Correlation:    corr,
		Opportunities:  top,
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(cfg.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutputFile, err)
	}

	log.Info("report written",
		zap.String("file", cfg.OutputFile),
		zap.Int("opportunities", len(top)),
		zap.Float64("var_95", mcRisk.VaR95),
		zap.Float64("es_95", mcRisk.ES95))
	return nil
}

// priceLadder evaluates every strike on a worker pool. Edge is the model value
// minus the market-implied value.
func priceLadder(eng *engine.Engine, cfg *config.Config, log *zap.Logger) ([]models.Candidate, error) {
	strikes := cfg.Strikes()

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(strikes)),
		mpb.PrependDecorators(
			decor.Name("Pricing"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	done := make(chan struct{})
	go monitorCPUUsage(log, done)
	defer close(done)

	jobs := make(chan int)
	candidates := make([]models.Candidate, len(strikes))
	errs := make([]error, len(strikes))

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				candidates[i], errs[i] = priceStrike(eng, cfg, strikes[i])
				bar.Increment()
			}
		}()
	}
	for i := range strikes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	p.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("strike %.2f: %w", strikes[i], err)
		}
	}
	log.Debug("ladder priced", zap.Int("strikes", len(strikes)))
	return candidates, nil
}

// monitorCPUUsage logs system CPU utilization every cpuSampleInterval until done closes.
func monitorCPUUsage(log *zap.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(cpuSampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			percentage, err := cpu.Percent(time.Second, false)
			if err != nil || len(percentage) == 0 {
				log.Debug("cpu usage unavailable", zap.Error(err))
				continue
			}
			log.Debug("cpu usage", zap.Float64("percent", percentage[0]))
		}
	}
}

func priceStrike(eng *engine.Engine, cfg *config.Config, strike float64) (models.Candidate, error) {
	eval, err := eng.Evaluate(cfg.Spot, strike, cfg.Expiry, cfg.RiskFreeRate, cfg.Volatility, cfg.Simulations)
	if err != nil {
		return models.Candidate{}, err
	}
	market, err := eng.Price(cfg.Spot, strike, cfg.Expiry, cfg.RiskFreeRate, cfg.MarketVol)
	if err != nil {
		return models.Candidate{}, err
	}
	return models.Candidate{
		ID:      fmt.Sprintf("C%.2f", strike),
		Payload: quote{Evaluation: eval, MarketPrice: market},
		Edge:    eval.Price - market,
	}, nil
}

// simulateHistories builds daily bars for the underlying and two peers, each
// series from its own seed.
func simulateHistories(cfg *config.Config) ([][]models.Bar, error) {
	vols := []float64{cfg.Volatility, cfg.MarketVol, (cfg.Volatility + cfg.MarketVol) / 2}

	histories := make([][]models.Bar, len(vols))
	for j, vol := range vols {
		sim := probability.NewSeededSimulator(probability.StreamSeed(cfg.Seed, probability.StreamHistory, uint64(j)))
		bars, err := sim.SimulateBars(cfg.Spot, cfg.RiskFreeRate, vol, cfg.CorrelationDays, stepsPerDay)
		if err != nil {
			return nil, fmt.Errorf("simulate history %d: %w", j, err)
		}
		histories[j] = bars
	}
	return histories, nil
}

func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
