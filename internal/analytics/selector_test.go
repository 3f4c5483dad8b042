package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

// metricRows yields two rows whose metrics are (end/start-1)*100, volume and cap.
func metricRows(coin string, start, end, volume, cap float64) []market.PricePoint {
	return []market.PricePoint{
		{CoinName: coin, Date: epochDay, Price: start, TotalVolume: volume, MarketCap: cap},
		{CoinName: coin, Date: epochDay.AddDate(0, 1, 0), Price: end, TotalVolume: volume, MarketCap: cap},
	}
}

func groupedYear() *market.Table {
	return tableOf(
		metricRows("AAA1", 10, 20, 1e3, 1e4),
		metricRows("AAA2", 10, 21, 1.1e3, 1.1e4),
		metricRows("BBB1", 10, 5, 1e6, 1e4),
		metricRows("BBB2", 10, 5.2, 1.05e6, 1.2e4),
		metricRows("CCC1", 10, 10, 1e3, 1e8),
		metricRows("CCC2", 10, 10.1, 1.2e3, 1.02e8),
		metricRows("DDD1", 10, 11, 5e5, 5e7),
		metricRows("DDD2", 10, 11.1, 5.1e5, 5.1e7),
	)
}

func TestSelectInterestingOnePerCluster(t *testing.T) {
	sel, err := SelectInteresting(groupedYear())
	require.NoError(t, err)
	require.Len(t, sel.Picks, SelectorClusters)
	require.Len(t, sel.Assignments, 8)

	groups := map[string]bool{}
	clusters := map[int]bool{}
	for _, pick := range sel.Picks {
		groups[pick.Metrics.CoinName[:3]] = true
		clusters[pick.ClusterID] = true

		for _, a := range sel.Assignments {
			if a.ClusterID != pick.ClusterID {
				continue
			}
			assert.LessOrEqual(t, pick.DistanceToCentroid, a.DistanceToCentroid+1e-12,
				"%s should be nearest to the centroid of cluster %d", pick.Metrics.CoinName, pick.ClusterID)
		}
	}
	assert.Len(t, groups, 4, "each natural group should contribute one coin")
	assert.Len(t, clusters, 4)

	for _, a := range sel.Assignments {
		for _, b := range sel.Assignments {
			if strings.HasPrefix(a.CoinName, b.CoinName[:3]) {
				assert.Equal(t, a.ClusterID, b.ClusterID, "%s and %s belong together", a.CoinName, b.CoinName)
			}
		}
	}
}

func TestSelectInterestingReproducible(t *testing.T) {
	first, err := SelectInteresting(groupedYear())
	require.NoError(t, err)
	for run := 0; run < 3; run++ {
		again, err := SelectInteresting(groupedYear())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSelectInterestingNeedsFourCoins(t *testing.T) {
	year := tableOf(
		metricRows("AAA", 10, 20, 1, 1),
		metricRows("BBB", 10, 5, 2, 2),
		metricRows("CCC", 10, 11, 3, 3),
		// a zero opening price leaves the change undefined, so this coin does not count
		metricRows("ZERO", 0, 11, 3, 3),
	)
	_, err := SelectInteresting(year)
	assert.ErrorIs(t, err, errs.ErrComputation)

	_, err = SelectInteresting(market.NewTable(nil))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestComputeYearMetrics(t *testing.T) {
	metrics := ComputeYearMetrics(tableOf(
		[]market.PricePoint{
			{CoinName: "BTC", Date: epochDay, Price: 100, TotalVolume: 10, MarketCap: 1000},
			{CoinName: "BTC", Date: epochDay.AddDate(0, 0, 1), Price: 150, TotalVolume: 30, MarketCap: 3000},
		},
		seriesRows("ONE", 4),
	))
	require.Len(t, metrics, 2)

	btc := metrics[0]
	assert.Equal(t, "BTC", btc.CoinName)
	assert.InDelta(t, 50.0, btc.PriceChangePct, 1e-12)
	assert.InDelta(t, 20.0, btc.AvgVolume, 1e-12)
	assert.InDelta(t, 2000.0, btc.AvgMarketCap, 1e-12)
	assert.InDelta(t, 125.0, btc.MeanPrice, 1e-12)
	require.NotNil(t, btc.Stability())

	assert.Zero(t, metrics[1].StdDev)
	assert.Nil(t, metrics[1].Stability())
}

func TestKMeansSeparatesObviousGroups(t *testing.T) {
	points := [][]float64{{0}, {0.1}, {10}, {10.1}}
	res, err := KMeans{K: 2, Seed: 7}.Fit(points)
	require.NoError(t, err)
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, res.Labels[2], res.Labels[3])
	assert.NotEqual(t, res.Labels[0], res.Labels[2])
	assert.InDelta(t, 0.01, res.Inertia, 1e-9)

	_, err = KMeans{K: 3}.Fit(points[:2])
	assert.ErrorIs(t, err, errs.ErrComputation)
}

func TestScalerConstantColumn(t *testing.T) {
	s := FitScaler([][]float64{{1, 5}, {3, 5}})
	assert.Equal(t, []float64{-1, 0}, s.Transform([]float64{1, 5}))
	assert.Equal(t, []float64{1, 0}, s.Transform([]float64{3, 5}))
}
