package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

// DefaultHorizon is the number of future steps produced by a forecast.
const DefaultHorizon = 3

// ModelOrder is the (p, d, q) order of an autoregressive-integrated model.
type ModelOrder struct {
	P int
	D int
	Q int
}

// DefaultOrder is the ARIMA(5,1,0) order used by range queries and recommendations.
var DefaultOrder = ModelOrder{P: 5, D: 1, Q: 0}

// MinObservations is the shortest series the order can be fitted on.
func (o ModelOrder) MinObservations() int {
	return o.P + o.D + 1
}

func (o ModelOrder) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// ForecastResult is a short-horizon price forecast for one coin over a date range.
type ForecastResult struct {
	CoinName       string
	HorizonPrices  []float64
	InitialPrice   float64
	CurrentPrice   float64
	PriceChangePct *float64
}

// Forecast fits the model on a date-ordered series and forecasts horizon steps ahead.
func Forecast(coin string, series []market.PricePoint, order ModelOrder, horizon int) (ForecastResult, error) {
	if len(series) == 0 {
		return ForecastResult{}, fmt.Errorf("%w: no observations for %s", errs.ErrInsufficientData, coin)
	}

	prices := market.Prices(series)
	result := ForecastResult{
		CoinName:       market.NormalizeCoin(coin),
		InitialPrice:   prices[0],
		CurrentPrice:   prices[len(prices)-1],
		PriceChangePct: pctChange(prices[0], prices[len(prices)-1]),
	}

	forecast, err := ForecastValues(prices, order, horizon)
	if err != nil {
		return ForecastResult{}, fmt.Errorf("forecast %s: %w", result.CoinName, err)
	}
	result.HorizonPrices = forecast
	return result, nil
}

// ForecastValues fits an ARIMA(p,d,0) model on values and returns horizon forecasts.
// AR coefficients are estimated by Yule-Walker on the d-times differenced series without a
// constant term.
func ForecastValues(values []float64, order ModelOrder, horizon int) ([]float64, error) {
	if order.P < 0 || order.D < 0 {
		return nil, fmt.Errorf("%w: invalid model order %s", errs.ErrComputation, order)
	}
	if order.Q != 0 {
		return nil, fmt.Errorf("%w: moving-average terms are not supported in %s", errs.ErrComputation, order)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive", errs.ErrComputation)
	}
	if len(values) < order.MinObservations() {
		return nil, fmt.Errorf("%w: %s needs %d observations, got %d",
			errs.ErrInsufficientData, order, order.MinObservations(), len(values))
	}

	levels := make([][]float64, order.D+1)
	levels[0] = append([]float64(nil), values...)
	for k := 1; k <= order.D; k++ {
		levels[k] = difference(levels[k-1])
	}

	stationary := levels[order.D]
	coeffs, err := yuleWalker(stationary, order.P)
	if err != nil {
		return nil, err
	}

	out := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		next := 0.0
		n := len(stationary)
		for i, phi := range coeffs {
			next += phi * stationary[n-1-i]
		}
		stationary = append(stationary, next)

		// integrate back up through each differencing level
		for k := order.D - 1; k >= 0; k-- {
			level := levels[k]
			next = level[len(level)-1] + next
			levels[k] = append(level, next)
		}
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return nil, fmt.Errorf("%w: forecast diverged", errs.ErrComputation)
		}
		out[h] = next
	}
	return out, nil
}

func difference(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}

// yuleWalker solves the Toeplitz autocovariance system for p AR coefficients.
func yuleWalker(x []float64, p int) ([]float64, error) {
	if p == 0 {
		return nil, nil
	}
	if allZero(x) {
		return nil, fmt.Errorf("%w: degenerate series has no variance after differencing", errs.ErrComputation)
	}
	n := float64(len(x))
	gamma := make([]float64, p+1)
	for k := 0; k <= p; k++ {
		sum := 0.0
		for t := k; t < len(x); t++ {
			sum += x[t] * x[t-k]
		}
		gamma[k] = sum / n
	}
	toeplitz := make([]float64, p*p)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			lag := i - j
			if lag < 0 {
				lag = -lag
			}
			toeplitz[i*p+j] = gamma[lag]
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(p, toeplitz)); !ok {
		return nil, fmt.Errorf("%w: autocovariance matrix is not positive definite", errs.ErrComputation)
	}

	var phi mat.VecDense
	if err := chol.SolveVecTo(&phi, mat.NewVecDense(p, append([]float64(nil), gamma[1:]...))); err != nil {
		return nil, fmt.Errorf("%w: solve yule-walker: %v", errs.ErrComputation, err)
	}

	coeffs := make([]float64, p)
	for i := range coeffs {
		coeffs[i] = phi.AtVec(i)
	}
	return coeffs, nil
}

// allZero reports whether every value is exactly zero. Yule-Walker is scale-free, so any
// non-zero variation is fitted regardless of magnitude.
func allZero(x []float64) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}
