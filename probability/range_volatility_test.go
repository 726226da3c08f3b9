package probability

import (
	"math"
	"testing"

	"github.com/bcdannyboy/qengine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatBars opens and closes every day at 100 with a fixed high/low range.
func flatBars(n int, logRange float64) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{Open: 100, High: 100 * math.Exp(logRange/2), Low: 100 * math.Exp(-logRange/2), Close: 100}
	}
	return bars
}

func TestRangeEstimatorsOnFlatBars(t *testing.T) {
	const hl = 0.02
	bars := flatBars(5, hl)

	parkinson, err := ParkinsonVolatility(bars, TradingDaysPerYear)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(hl*hl/(4*math.Ln2)*TradingDaysPerYear), parkinson, 1e-12)

	gk, err := GarmanKlassVolatility(bars, TradingDaysPerYear)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.5*hl*hl*TradingDaysPerYear), gk, 1e-12)

	// ln(H/C)ln(H/O) + ln(L/C)ln(L/O) = 2*(hl/2)^2
	rs, err := RogersSatchellVolatility(bars, TradingDaysPerYear)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.5*hl*hl*TradingDaysPerYear), rs, 1e-12)

	// no overnight or open-close variance, so only the weighted Rogers-Satchell term remains
	yz, err := YangZhangVolatility(bars, TradingDaysPerYear)
	require.NoError(t, err)
	k := 0.34 / (1.34 + 6.0/4.0)
	assert.InDelta(t, math.Sqrt((1-k)*0.5*hl*hl*TradingDaysPerYear), yz, 1e-12)
}

func TestRangeEstimatorsTrackSimulatedVol(t *testing.T) {
	bars, err := NewSeededSimulator(8).SimulateBars(100, 0.02, 0.2, 252, 32)
	require.NoError(t, err)

	for name, estimate := range map[string]func([]models.Bar, float64) (float64, error){
		"parkinson":       ParkinsonVolatility,
		"garman-klass":    GarmanKlassVolatility,
		"rogers-satchell": RogersSatchellVolatility,
		"yang-zhang":      YangZhangVolatility,
	} {
		vol, err := estimate(bars, TradingDaysPerYear)
		require.NoError(t, err, name)
		assert.Greater(t, vol, 0.12, name)
		assert.Less(t, vol, 0.26, name)
	}
}

func TestRangeVolatilitiesWindows(t *testing.T) {
	bars, err := NewSeededSimulator(2).SimulateBars(100, 0.02, 0.3, 30, 8)
	require.NoError(t, err)

	windows, err := RangeVolatilities(bars)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	for i, want := range []struct {
		name string
		days int
	}{{"1w", 5}, {"2w", 10}, {"1m", 21}} {
		assert.Equal(t, want.name, windows[i].Window)
		assert.Equal(t, want.days, windows[i].Days)
		assert.Greater(t, windows[i].Parkinson, 0.0)
		assert.Greater(t, windows[i].CloseToClose, 0.0)
	}

	_, err = RangeVolatilities(bars[:2])
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRangeEstimatorsRejectBadBars(t *testing.T) {
	bad := flatBars(3, 0.02)
	bad[1].High = 99

	_, err := ParkinsonVolatility(bad, TradingDaysPerYear)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	bad = flatBars(3, 0.02)
	bad[2].Low = 0
	_, err = YangZhangVolatility(bad, TradingDaysPerYear)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = GarmanKlassVolatility(flatBars(3, 0.02), 0)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
