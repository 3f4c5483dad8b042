package query

import (
	"fmt"
	"sort"

	"coin-insights/internal/analytics"
	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

// Summarize counts coins and averages every price of the table.
func Summarize(t *market.Table) Summary {
	rows := t.Rows()
	if len(rows) == 0 {
		return Summary{}
	}
	var total float64
	for _, row := range rows {
		total += row.Price
	}
	return Summary{TotalCryptos: len(t.Coins()), AveragePrice: total / float64(len(rows))}
}

// Names returns every coin symbol in ascending order.
func Names(t *market.Table) []string {
	return t.Coins()
}

// PriceRange returns a coin's rows within the requested dates and an ARIMA forecast over them.
func PriceRange(t *market.Table, req RangeRequest) (RangeResult, error) {
	from, to, err := req.bounds()
	if err != nil {
		return RangeResult{}, err
	}
	coin := market.NormalizeCoin(req.CoinName)
	rows := t.Range(coin, from, to)
	if len(rows) == 0 {
		return RangeResult{}, fmt.Errorf("%w: no data found for %s in the given date range", errs.ErrNotFound, coin)
	}

	forecast, err := analytics.Forecast(coin, rows, analytics.DefaultOrder, analytics.DefaultHorizon)
	if err != nil {
		return RangeResult{}, err
	}

	data := make([]Row, len(rows))
	for i, row := range rows {
		data[i] = toRow(row)
	}
	return RangeResult{
		Summary: RangeSummary{
			CoinName:              coin,
			StartDate:             req.StartDate,
			EndDate:               req.EndDate,
			InitialPrice:          forecast.InitialPrice,
			FinalPrice:            forecast.CurrentPrice,
			PriceChangePercentage: forecast.PriceChangePct,
			PredictedPrices:       forecast.HorizonPrices,
		},
		Data: data,
	}, nil
}

// Snapshot lists the market cap of every coin observed on a date, ascending by market cap.
// A coin with several rows on the date reports its first one.
func Snapshot(t *market.Table, req SnapshotRequest) (SnapshotResult, error) {
	date, err := requiredDate("date", req.Date)
	if err != nil {
		return SnapshotResult{}, err
	}
	rows := t.OnDate(date)
	if len(rows) == 0 {
		return SnapshotResult{}, fmt.Errorf("%w: no data found for %s", errs.ErrNotFound, req.Date)
	}

	data := make([]MarketCap, 0, len(rows))
	for i, row := range rows {
		if i > 0 && row.CoinName == rows[i-1].CoinName {
			continue
		}
		data = append(data, MarketCap{CoinName: row.CoinName, MarketCap: row.MarketCap})
	}
	sort.SliceStable(data, func(i, j int) bool { return data[i].MarketCap < data[j].MarketCap })
	return SnapshotResult{Date: req.Date, Data: data}, nil
}

// MostInteresting returns the yearly chart of every coin picked by the cluster selector.
func MostInteresting(t *market.Table, req YearRequest) (MostInterestingResult, error) {
	if err := req.Validate(); err != nil {
		return MostInterestingResult{}, err
	}
	year := t.Year(int(req.Year))
	selection, err := analytics.SelectInteresting(year)
	if err != nil {
		return MostInterestingResult{}, err
	}

	out := MostInterestingResult{Year: int(req.Year), TopCryptos: make([]CoinHistory, len(selection.Picks))}
	for i, pick := range selection.Picks {
		coin := pick.Metrics.CoinName
		out.TopCryptos[i] = CoinHistory{CoinName: coin, Data: chart(year.Series(coin))}
	}
	return out, nil
}

// YearStats reports the most stable coin, the global mean price and the coins above it.
func YearStats(t *market.Table, req YearRequest) (YearStatsResult, error) {
	if err := req.Validate(); err != nil {
		return YearStatsResult{}, err
	}
	year := t.Year(int(req.Year))
	ranking, err := analytics.RankVolatility(year)
	if err != nil {
		return YearStatsResult{}, err
	}
	global, above, err := analytics.AboveGlobalMean(year)
	if err != nil {
		return YearStatsResult{}, err
	}

	out := YearStatsResult{
		Year:             int(req.Year),
		LowestStdDevCoin: ranking.MostStable,
		GlobalMean:       global,
		TopCryptos:       make([]MeanCoinHistory, len(above)),
	}
	for i, m := range above {
		out.TopCryptos[i] = MeanCoinHistory{CoinName: m.CoinName, MeanPrice: m.MeanPrice, Data: chart(year.Series(m.CoinName))}
	}
	return out, nil
}

// Volatility reports the most volatile and most stable coins of a year with their charts.
func Volatility(t *market.Table, req YearRequest) (VolatilityResult, error) {
	if err := req.Validate(); err != nil {
		return VolatilityResult{}, err
	}
	year := t.Year(int(req.Year))
	ranking, err := analytics.RankVolatility(year)
	if err != nil {
		return VolatilityResult{}, err
	}
	return VolatilityResult{
		Year:             int(req.Year),
		MostVolatileCoin: ranking.MostVolatile,
		MostStableCoin:   ranking.MostStable,
		VolatileCoinData: chart(year.Series(ranking.MostVolatile.CoinName)),
		StableCoinData:   chart(year.Series(ranking.MostStable.CoinName)),
	}, nil
}
