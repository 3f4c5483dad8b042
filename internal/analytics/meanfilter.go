package analytics

import (
	"fmt"

	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

// CoinMean is a coin's arithmetic mean price over a year.
type CoinMean struct {
	CoinName  string
	MeanPrice float64
}

// AboveGlobalMean returns the unweighted mean of per-coin mean prices and the coins whose
// mean strictly exceeds it, in ascending coin order.
func AboveGlobalMean(year *market.Table) (float64, []CoinMean, error) {
	if year.Len() == 0 {
		return 0, nil, fmt.Errorf("%w: no rows for the requested year", errs.ErrNotFound)
	}

	coins, groups := year.Partition()
	means := make([]CoinMean, len(coins))
	perCoin := make([]float64, len(coins))
	for i, coin := range coins {
		m := mean(market.Prices(groups[coin]))
		means[i] = CoinMean{CoinName: coin, MeanPrice: m}
		perCoin[i] = m
	}

	global := mean(perCoin)
	above := make([]CoinMean, 0)
	for _, m := range means {
		if m.MeanPrice > global {
			above = append(above, m)
		}
	}
	return global, above, nil
}
