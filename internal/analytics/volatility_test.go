package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

func TestRankVolatilityExtremes(t *testing.T) {
	year := tableOf(
		seriesRows("BTC", 100, 140, 90, 180),
		seriesRows("ETH", 10, 12, 9, 11),
		seriesRows("USDT", 1, 1.01, 0.99, 1),
		seriesRows("DOGE", 0.1, 0.3, 0.2),
	)

	ranking, err := RankVolatility(year)
	require.NoError(t, err)
	assert.Equal(t, "BTC", ranking.MostVolatile.CoinName)
	assert.Equal(t, "USDT", ranking.MostStable.CoinName)

	for _, d := range ranking.Dispersions {
		assert.GreaterOrEqual(t, ranking.MostVolatile.StdDev, d.StdDev, d.CoinName)
		assert.LessOrEqual(t, ranking.MostStable.StdDev, d.StdDev, d.CoinName)
	}
}

func TestRankVolatilityTieGoesToFirstCoin(t *testing.T) {
	year := tableOf(
		seriesRows("ZEC", 1, 3),
		seriesRows("ADA", 5, 7),
		seriesRows("MID", 2, 3),
	)

	ranking, err := RankVolatility(year)
	require.NoError(t, err)
	assert.Equal(t, "ADA", ranking.MostVolatile.CoinName)
	assert.Equal(t, "MID", ranking.MostStable.CoinName)
}

func TestRankVolatilityExcludesSingletons(t *testing.T) {
	year := tableOf(
		seriesRows("ONE", 5),
		seriesRows("TWO", 5, 6),
	)

	ranking, err := RankVolatility(year)
	require.NoError(t, err)
	assert.Len(t, ranking.Dispersions, 1)
	assert.Equal(t, "TWO", ranking.MostStable.CoinName)

	_, err = RankVolatility(tableOf(seriesRows("ONE", 5)))
	assert.ErrorIs(t, err, errs.ErrComputation)

	_, err = RankVolatility(market.NewTable(nil))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
