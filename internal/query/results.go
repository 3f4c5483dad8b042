package query

import (
	"coin-insights/internal/analytics"
	"coin-insights/internal/market"
)

// Summary counts distinct coins and averages every price in the table.
type Summary struct {
	TotalCryptos int     `json:"total_cryptos"`
	AveragePrice float64 `json:"average_price"`
}

// RangeSummary describes a range query and its forecast.
type RangeSummary struct {
	CoinName              string    `json:"coin_name"`
	StartDate             string    `json:"start_date"`
	EndDate               string    `json:"end_date"`
	InitialPrice          float64   `json:"initial_price"`
	FinalPrice            float64   `json:"final_price"`
	PriceChangePercentage *float64  `json:"price_change_percentage"`
	PredictedPrices       []float64 `json:"predicted_prices"`
}

// Row is a wire-format price row.
type Row struct {
	CoinName             string   `json:"coin_name"`
	Date                 string   `json:"date"`
	Price                float64  `json:"price"`
	TotalVolume          float64  `json:"total_volume"`
	MarketCap            float64  `json:"market_cap"`
	VolumeMarketCapRatio *float64 `json:"volume_market_cap_ratio"`
}

// RangeResult is the reply to a RangeRequest.
type RangeResult struct {
	Summary RangeSummary `json:"summary"`
	Data    []Row        `json:"data"`
}

// MarketCap is one coin's market cap on a date.
type MarketCap struct {
	CoinName  string  `json:"coin_name"`
	MarketCap float64 `json:"market_cap"`
}

// SnapshotResult lists market caps on a date in ascending order.
type SnapshotResult struct {
	Date string      `json:"date"`
	Data []MarketCap `json:"data"`
}

// DatePrice is one point of a price chart.
type DatePrice struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// CoinHistory is a coin's price chart within a year.
type CoinHistory struct {
	CoinName string      `json:"coin_name"`
	Data     []DatePrice `json:"data"`
}

// MostInterestingResult holds the chart of every coin the selector picked.
type MostInterestingResult struct {
	Year       int           `json:"year"`
	TopCryptos []CoinHistory `json:"top_cryptos"`
}

// MeanCoinHistory is a coin above the global mean together with its chart.
type MeanCoinHistory struct {
	CoinName  string      `json:"coin_name"`
	MeanPrice float64     `json:"mean_price"`
	Data      []DatePrice `json:"data"`
}

// YearStatsResult combines the most stable coin with the above-mean filter.
type YearStatsResult struct {
	Year             int                      `json:"year"`
	LowestStdDevCoin analytics.CoinDispersion `json:"lowest_std_dev_coin"`
	GlobalMean       float64                  `json:"global_mean"`
	TopCryptos       []MeanCoinHistory        `json:"top_cryptos"`
}

// VolatilityResult reports the year's extremes with their charts.
type VolatilityResult struct {
	Year             int                      `json:"year"`
	MostVolatileCoin analytics.CoinDispersion `json:"most_volatile_coin"`
	MostStableCoin   analytics.CoinDispersion `json:"most_stable_coin"`
	VolatileCoinData []DatePrice              `json:"volatile_coin_data"`
	StableCoinData   []DatePrice              `json:"stable_coin_data"`
}

func toRow(p market.PricePoint) Row {
	return Row{
		CoinName:             p.CoinName,
		Date:                 p.Date.Format(market.DateLayout),
		Price:                p.Price,
		TotalVolume:          p.TotalVolume,
		MarketCap:            p.MarketCap,
		VolumeMarketCapRatio: p.VolumeMarketCapRatio(),
	}
}

func chart(rows []market.PricePoint) []DatePrice {
	out := make([]DatePrice, len(rows))
	for i, row := range rows {
		out[i] = DatePrice{Date: row.Date.Format(market.DateLayout), Price: row.Price}
	}
	return out
}
