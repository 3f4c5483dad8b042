package analytics

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"coin-insights/internal/errs"
)

// Action is the outcome of the recommendation policy.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

const (
	// BuyThresholdPct is the minimum forecast gain, in percent, for a buy.
	BuyThresholdPct = 1.0
	// SellThresholdPct is the forecast change, in percent, below which a sell is issued.
	SellThresholdPct = -2.0
	// ConfidenceThreshold gates both buy and sell.
	ConfidenceThreshold = 0.6
)

// Recommendation is a buy/sell/hold decision with its justification.
type Recommendation struct {
	Action       Action
	Confidence   float64
	PriceDiffPct float64
	Reason       string
	Forecast     ForecastResult
}

// Confidence scores how close and how tight a forecast is relative to the current price:
// 0.7*(1 - |mean-current|/current) + 0.3*(1 - cv), clamped to [0,1].
func Confidence(forecast []float64, current float64) float64 {
	m := mean(forecast)
	cv := 1.0
	if m != 0 {
		cv = popStdDev(forecast) / m
	}
	avgDiff := math.Abs(m-current) / current
	c := 0.7*(1-avgDiff) + 0.3*(1-cv)
	return math.Max(0, math.Min(1, c))
}

// Decide applies the buy/sell/hold thresholds.
func Decide(priceDiffPct, confidence float64) Action {
	switch {
	case confidence >= ConfidenceThreshold && priceDiffPct > BuyThresholdPct:
		return ActionBuy
	case confidence >= ConfidenceThreshold && priceDiffPct < SellThresholdPct:
		return ActionSell
	default:
		return ActionHold
	}
}

// Recommend turns a forecast into a recommendation.
func Recommend(f ForecastResult) (Recommendation, error) {
	if len(f.HorizonPrices) == 0 {
		return Recommendation{}, fmt.Errorf("%w: forecast for %s is empty", errs.ErrInsufficientData, f.CoinName)
	}
	if f.CurrentPrice == 0 {
		return Recommendation{}, fmt.Errorf("%w: current price of %s is zero", errs.ErrComputation, f.CoinName)
	}

	m := mean(f.HorizonPrices)
	diff := (m - f.CurrentPrice) / f.CurrentPrice * 100
	confidence := Confidence(f.HorizonPrices, f.CurrentPrice)
	action := Decide(diff, confidence)

	return Recommendation{
		Action:       action,
		Confidence:   confidence,
		PriceDiffPct: diff,
		Reason:       reason(action, f, diff, confidence),
		Forecast:     f,
	}, nil
}

func reason(action Action, f ForecastResult, diff, confidence float64) string {
	current := Money(f.CurrentPrice)
	next := Money(f.HorizonPrices[0])
	pct := confidence * 100

	switch action {
	case ActionBuy:
		return fmt.Sprintf("Strong upward trend (forecast +%.2f%%). The current price is $%s and it is expected to reach $%s in the short term (confidence %.1f%%).",
			diff, current, next, pct)
	case ActionSell:
		recent := "n/a"
		if f.PriceChangePct != nil {
			recent = fmt.Sprintf("%.2f%%", *f.PriceChangePct)
		}
		return fmt.Sprintf("Strong downward trend (forecast %.2f%%). The current price is $%s and it is expected to fall to $%s (confidence %.1f%%). Recent change: %s.",
			diff, current, next, pct, recent)
	default:
		return fmt.Sprintf("Neutral trend (change %.2f%%). The current price is $%s with a forecast of $%s (confidence %.1f%%). Wait for a clearer signal.",
			diff, current, next, pct)
	}
}

// Money renders a price with two decimal places.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
