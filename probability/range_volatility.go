package probability

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/qengine/models"
	"gonum.org/v1/gonum/stat"
)

// minRangeBars is the shortest window with a defined Yang-Zhang overnight variance.
const minRangeBars = 3

var rangeWindows = []struct {
	name string
	days int
}{
	{"1w", 5},
	{"2w", 10},
	{"1m", 21},
	{"3m", 63},
	{"6m", 126},
	{"1y", 252},
}

// ParkinsonVolatility estimates annualized volatility from the high-low range alone.
func ParkinsonVolatility(bars []models.Bar, periodsPerYear float64) (float64, error) {
	if err := validateBars(bars, periodsPerYear); err != nil {
		return 0, err
	}
	var sum float64
	for _, b := range bars {
		hl := math.Log(b.High / b.Low)
		sum += hl * hl
	}
	variance := sum / (4 * math.Ln2 * float64(len(bars)))
	return math.Sqrt(variance * periodsPerYear), nil
}

// GarmanKlassVolatility adds the open-close move to the Parkinson range term.
func GarmanKlassVolatility(bars []models.Bar, periodsPerYear float64) (float64, error) {
	if err := validateBars(bars, periodsPerYear); err != nil {
		return 0, err
	}
	var sum float64
	for _, b := range bars {
		hl := math.Log(b.High / b.Low)
		co := math.Log(b.Close / b.Open)
		sum += 0.5*hl*hl - (2*math.Ln2-1)*co*co
	}
	return math.Sqrt(sum / float64(len(bars)) * periodsPerYear), nil
}

// RogersSatchellVolatility is unbiased under non-zero drift.
func RogersSatchellVolatility(bars []models.Bar, periodsPerYear float64) (float64, error) {
	if err := validateBars(bars, periodsPerYear); err != nil {
		return 0, err
	}
	return math.Sqrt(rogersSatchellVariance(bars) * periodsPerYear), nil
}

// YangZhangVolatility combines overnight, open-to-close and Rogers-Satchell
// variances, weighting with k = 0.34 / (1.34 + (n+1)/(n-1)).
func YangZhangVolatility(bars []models.Bar, periodsPerYear float64) (float64, error) {
	if err := validateBars(bars, periodsPerYear); err != nil {
		return 0, err
	}
	n := len(bars)
	overnight := make([]float64, n-1)
	for i := 1; i < n; i++ {
		overnight[i-1] = math.Log(bars[i].Open / bars[i-1].Close)
	}
	openClose := make([]float64, n)
	for i, b := range bars {
		openClose[i] = math.Log(b.Close / b.Open)
	}

	k := 0.34 / (1.34 + float64(n+1)/float64(n-1))
	variance := stat.Variance(overnight, nil) + k*stat.Variance(openClose, nil) + (1-k)*rogersSatchellVariance(bars)
	return math.Sqrt(variance * periodsPerYear), nil
}

// RangeVolatilities reports every estimator over the trailing 1w..1y windows
// that fit inside bars, shortest first.
func RangeVolatilities(bars []models.Bar) ([]models.RangeVolatility, error) {
	if err := validateBars(bars, TradingDaysPerYear); err != nil {
		return nil, err
	}

	var out []models.RangeVolatility
	for _, w := range rangeWindows {
		if len(bars) < w.days {
			break
		}
		window := bars[len(bars)-w.days:]
		closes := make([]float64, len(window))
		for i, b := range window {
			closes[i] = b.Close
		}

		est := models.RangeVolatility{Window: w.name, Days: w.days}
		var err error
		if est.CloseToClose, err = RealizedVolatility(closes, TradingDaysPerYear); err != nil {
			return nil, err
		}
		// validated above; the estimators below cannot fail on a sub-window
		est.Parkinson, _ = ParkinsonVolatility(window, TradingDaysPerYear)
		est.GarmanKlass, _ = GarmanKlassVolatility(window, TradingDaysPerYear)
		est.RogersSatchell, _ = RogersSatchellVolatility(window, TradingDaysPerYear)
		est.YangZhang, _ = YangZhangVolatility(window, TradingDaysPerYear)
		out = append(out, est)
	}
	return out, nil
}

func rogersSatchellVariance(bars []models.Bar) float64 {
	var sum float64
	for _, b := range bars {
		sum += math.Log(b.High/b.Close)*math.Log(b.High/b.Open) +
			math.Log(b.Low/b.Close)*math.Log(b.Low/b.Open)
	}
	return sum / float64(len(bars))
}

func validateBars(bars []models.Bar, periodsPerYear float64) error {
	if len(bars) < minRangeBars {
		return fmt.Errorf("%w: need at least %d bars, got %d", models.ErrInvalidInput, minRangeBars, len(bars))
	}
	if !(periodsPerYear > 0) || math.IsInf(periodsPerYear, 0) {
		return fmt.Errorf("%w: periods per year must be positive, got %v", models.ErrInvalidInput, periodsPerYear)
	}
	for i, b := range bars {
		for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
			if !(p > 0) || math.IsInf(p, 0) {
				return fmt.Errorf("%w: bar %d has non-positive or non-finite price", models.ErrInvalidInput, i)
			}
		}
		if b.High < math.Max(b.Open, b.Close) || b.Low > math.Min(b.Open, b.Close) {
			return fmt.Errorf("%w: bar %d range does not contain open and close", models.ErrInvalidInput, i)
		}
	}
	return nil
}
