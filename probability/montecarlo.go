package probability

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/bcdannyboy/qengine/models"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Simulator draws risk-neutral GBM terminal prices from its own generator.
// A Simulator is not safe for concurrent use; give each goroutine its own.
type Simulator struct {
	rng *rand.Rand
}

func NewSimulator(src rand.Source) *Simulator {
	return &Simulator{rng: rand.New(src)}
}

func NewSeededSimulator(seed uint64) *Simulator {
	return NewSimulator(rand.NewSource(seed))
}

// Simulate samples n terminal prices S_T = S*exp((r - sigma^2/2)T + sigma*sqrt(T)*Z)
// in a single exact step.
func (s *Simulator) Simulate(S, T, r, sigma float64, n int) (models.SamplePath, error) {
	if err := validateSimulation(S, T, r, sigma, n); err != nil {
		return nil, err
	}
	path := make(models.SamplePath, n)
	s.fill(path, S, T, r, sigma)
	return path, nil
}

func (s *Simulator) fill(dst []float64, S, T, r, sigma float64) {
	drift := (r - 0.5*sigma*sigma) * T
	diffusion := sigma * math.Sqrt(T)
	for i := range dst {
		dst[i] = S * math.Exp(drift+diffusion*s.rng.NormFloat64())
	}
}

// SimulateBars walks a GBM path of days trading days, stepsPerDay exact steps
// each, and records every day as a bar. Each open is the previous close.
func (s *Simulator) SimulateBars(S, r, sigma float64, days, stepsPerDay int) ([]models.Bar, error) {
	if err := validateSimulation(S, 0, r, sigma, days); err != nil {
		return nil, err
	}
	if S == 0 {
		return nil, fmt.Errorf("%w: bar simulation needs a positive spot", models.ErrInvalidInput)
	}
	if stepsPerDay <= 0 {
		return nil, fmt.Errorf("%w: steps per day must be positive, got %d", models.ErrInvalidInput, stepsPerDay)
	}

	dt := 1 / float64(TradingDaysPerYear*stepsPerDay)
	drift := (r - 0.5*sigma*sigma) * dt
	diffusion := sigma * math.Sqrt(dt)

	bars := make([]models.Bar, days)
	price := S
	for d := range bars {
		bar := models.Bar{Open: price, High: price, Low: price}
		for i := 0; i < stepsPerDay; i++ {
			price *= math.Exp(drift + diffusion*s.rng.NormFloat64())
			bar.High = math.Max(bar.High, price)
			bar.Low = math.Min(bar.Low, price)
		}
		bar.Close = price
		bars[d] = bar
	}
	return bars, nil
}

// SimulateParallel splits n samples across workers, each drawing from its own
// source seeded with StreamSeed(seed, StreamParallel, worker). Output is
// reproducible for a given (seed, workers).
func SimulateParallel(S, T, r, sigma float64, n, workers int, seed uint64) (models.SamplePath, error) {
	if err := validateSimulation(S, T, r, sigma, n); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	path := make(models.SamplePath, n)
	chunk := n / workers
	remainder := n % workers

	var wg sync.WaitGroup
	start := 0
	for w := 0; w < workers; w++ {
		size := chunk
		if w < remainder {
			size++
		}
		wg.Add(1)
		go func(worker int, dst []float64) {
			defer wg.Done()
			NewSeededSimulator(StreamSeed(seed, StreamParallel, uint64(worker))).fill(dst, S, T, r, sigma)
		}(w, path[start:start+size])
		start += size
	}

	wg.Wait()
	return path, nil
}

// Summarize reports the mean, population standard deviation and the first
// sampleSize values of a path.
func Summarize(path models.SamplePath, sampleSize int) (models.SimulationSummary, error) {
	if len(path) == 0 {
		return models.SimulationSummary{}, fmt.Errorf("%w: empty sample path", models.ErrInvalidInput)
	}
	if sampleSize < 0 {
		return models.SimulationSummary{}, fmt.Errorf("%w: sample size must be >= 0, got %d", models.ErrInvalidInput, sampleSize)
	}
	if sampleSize > len(path) {
		sampleSize = len(path)
	}

	mean, variance := stat.PopMeanVariance(path, nil)
	sample := make([]float64, sampleSize)
	copy(sample, path[:sampleSize])

	return models.SimulationSummary{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Sample: sample,
	}, nil
}

func validateSimulation(S, T, r, sigma float64, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: sample count must be positive, got %d", models.ErrInvalidInput, n)
	}
	for _, v := range []float64{S, T, r, sigma} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: simulation parameters must be finite", models.ErrInvalidInput)
		}
	}
	if S < 0 || T < 0 || sigma < 0 {
		return fmt.Errorf("%w: S, T and sigma must be >= 0 (S=%v T=%v sigma=%v)", models.ErrInvalidInput, S, T, sigma)
	}
	return nil
}
