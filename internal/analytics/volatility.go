package analytics

import (
	"fmt"

	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

// CoinDispersion is the sample standard deviation of one coin's price within a year.
type CoinDispersion struct {
	CoinName string  `json:"coin_name"`
	StdDev   float64 `json:"std_dev"`
}

// VolatilityRanking holds the extremes of price dispersion for a year.
type VolatilityRanking struct {
	MostVolatile CoinDispersion
	MostStable   CoinDispersion
	Dispersions  []CoinDispersion
}

// Dispersions computes per-coin price std-dev in ascending coin order.
// Coins with a single observation have no defined std-dev and are left out.
func Dispersions(year *market.Table) []CoinDispersion {
	coins, groups := year.Partition()
	out := make([]CoinDispersion, 0, len(coins))
	for _, coin := range coins {
		std, ok := sampleStdDev(market.Prices(groups[coin]))
		if !ok {
			continue
		}
		out = append(out, CoinDispersion{CoinName: coin, StdDev: std})
	}
	return out
}

// RankVolatility finds the most volatile and most stable coins of a year table.
// Ties go to the alphabetically first coin.
func RankVolatility(year *market.Table) (VolatilityRanking, error) {
	if year.Len() == 0 {
		return VolatilityRanking{}, fmt.Errorf("%w: no rows for the requested year", errs.ErrNotFound)
	}

	dispersions := Dispersions(year)
	if len(dispersions) == 0 {
		return VolatilityRanking{}, fmt.Errorf("%w: no coin has two or more observations", errs.ErrComputation)
	}

	ranking := VolatilityRanking{
		MostVolatile: dispersions[0],
		MostStable:   dispersions[0],
		Dispersions:  dispersions,
	}
	for _, d := range dispersions[1:] {
		if d.StdDev > ranking.MostVolatile.StdDev {
			ranking.MostVolatile = d
		}
		if d.StdDev < ranking.MostStable.StdDev {
			ranking.MostStable = d
		}
	}
	return ranking, nil
}
