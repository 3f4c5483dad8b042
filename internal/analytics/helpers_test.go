package analytics

import (
	"time"

	"coin-insights/internal/market"
)

var epochDay = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// seriesRows builds consecutive daily rows for one coin starting 2023-01-01.
func seriesRows(coin string, prices ...float64) []market.PricePoint {
	rows := make([]market.PricePoint, len(prices))
	for i, p := range prices {
		rows[i] = market.PricePoint{CoinName: coin, Date: epochDay.AddDate(0, 0, i), Price: p}
	}
	return rows
}

func tableOf(groups ...[]market.PricePoint) *market.Table {
	var rows []market.PricePoint
	for _, g := range groups {
		rows = append(rows, g...)
	}
	return market.NewTable(rows)
}
