package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-insights/internal/errs"
)

var wavy = []float64{100, 103, 101, 106, 104, 108, 107, 111, 109, 114, 112, 115}

func TestForecastDeterministic(t *testing.T) {
	series := seriesRows("btc", wavy...)

	first, err := Forecast("btc", series, DefaultOrder, DefaultHorizon)
	require.NoError(t, err)
	for run := 0; run < 5; run++ {
		again, err := Forecast("btc", series, DefaultOrder, DefaultHorizon)
		require.NoError(t, err)
		assert.Equal(t, first.HorizonPrices, again.HorizonPrices, "run %d", run)
	}

	assert.Equal(t, "BTC", first.CoinName)
	assert.Len(t, first.HorizonPrices, DefaultHorizon)
	assert.Equal(t, 100.0, first.InitialPrice)
	assert.Equal(t, 115.0, first.CurrentPrice)
	require.NotNil(t, first.PriceChangePct)
	assert.InDelta(t, 15.0, *first.PriceChangePct, 1e-9)
}

func TestForecastInsufficientData(t *testing.T) {
	_, err := Forecast("btc", nil, DefaultOrder, DefaultHorizon)
	assert.ErrorIs(t, err, errs.ErrInsufficientData)

	_, err = Forecast("btc", seriesRows("btc", 1, 2, 3, 5, 4, 6), DefaultOrder, DefaultHorizon)
	assert.ErrorIs(t, err, errs.ErrInsufficientData)

	_, err = Forecast("btc", seriesRows("btc", 1, 2, 3, 5, 4, 6, 5), DefaultOrder, DefaultHorizon)
	assert.NoError(t, err, "p+d+1 observations should be enough")
}

func TestForecastDegenerateSeries(t *testing.T) {
	_, err := Forecast("usdt", seriesRows("usdt", 1, 1, 1, 1, 1, 1, 1, 1, 1), DefaultOrder, DefaultHorizon)
	assert.ErrorIs(t, err, errs.ErrComputation)
}

func TestForecastScaleInvariant(t *testing.T) {
	base, err := ForecastValues(wavy, DefaultOrder, DefaultHorizon)
	require.NoError(t, err)

	for _, scale := range []float64{1e-3, 1e-8, 1e-12} {
		scaled := make([]float64, len(wavy))
		for i, v := range wavy {
			scaled[i] = v * scale
		}
		out, err := ForecastValues(scaled, DefaultOrder, DefaultHorizon)
		require.NoError(t, err, "scale %g", scale)
		require.Len(t, out, len(base))
		for i := range base {
			assert.InEpsilon(t, base[i]*scale, out[i], 1e-9, "scale %g step %d", scale, i)
		}
	}
}

func TestForecastRejectsMovingAverage(t *testing.T) {
	_, err := ForecastValues(wavy, ModelOrder{P: 1, D: 1, Q: 1}, 3)
	assert.ErrorIs(t, err, errs.ErrComputation)
}

func TestForecastFollowsOscillation(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 + float64(i%2)
	}
	require.Equal(t, 101.0, values[len(values)-1])

	out, err := ForecastValues(values, DefaultOrder, 3)
	require.NoError(t, err)
	assert.Less(t, out[0], 101.0, "after an up-move the alternating series should turn down")
	for _, v := range out {
		assert.InDelta(t, 100.5, v, 5)
	}
}

func TestForecastPriceChangeAbsentOnZeroStart(t *testing.T) {
	res, err := Forecast("new", seriesRows("new", 0, 1, 3, 2, 5, 4, 6, 7, 6), DefaultOrder, DefaultHorizon)
	require.NoError(t, err)
	assert.Nil(t, res.PriceChangePct)
}
