package analytics

import (
	"coin-insights/internal/market"
)

// YearMetrics summarises one coin over one calendar year.
type YearMetrics struct {
	CoinName       string
	PriceChangePct float64
	AvgVolume      float64
	AvgMarketCap   float64
	StdDev         float64
	MeanPrice      float64
	Observations   int
}

// Features returns the vector clustered by the coin selector.
func (m YearMetrics) Features() []float64 {
	return []float64{m.PriceChangePct, m.AvgVolume, m.AvgMarketCap}
}

// Stability is the inverse of the price std-dev, or nil when the std-dev is zero or undefined.
func (m YearMetrics) Stability() *float64 {
	if m.StdDev == 0 {
		return nil
	}
	s := 1 / m.StdDev
	return &s
}

// ComputeYearMetrics derives metrics for every coin of a year table, in ascending coin order.
// A coin whose first price of the year is zero has no defined price change and is skipped.
// Single-observation coins report a zero std-dev.
func ComputeYearMetrics(year *market.Table) []YearMetrics {
	coins, groups := year.Partition()
	out := make([]YearMetrics, 0, len(coins))
	for _, coin := range coins {
		rows := groups[coin]
		prices := market.Prices(rows)
		change := pctChange(prices[0], prices[len(prices)-1])
		if change == nil {
			continue
		}

		volumes := make([]float64, len(rows))
		caps := make([]float64, len(rows))
		for i, row := range rows {
			volumes[i] = row.TotalVolume
			caps[i] = row.MarketCap
		}
		std, _ := sampleStdDev(prices)

		out = append(out, YearMetrics{
			CoinName:       coin,
			PriceChangePct: *change,
			AvgVolume:      mean(volumes),
			AvgMarketCap:   mean(caps),
			StdDev:         std,
			MeanPrice:      mean(prices),
			Observations:   len(rows),
		})
	}
	return out
}
